package interpreter

// Ref is the capability every heap-allocated, reference-counted value in
// the object arena exposes: retain/release (spec.md §4.2). Both Definition
// and Instance implement it via the embedded arenaHeader.
type Ref interface {
	retain()
	release()
}

// arenaHeader is the tiny {free_callback, ref_count} header spec.md §4.2
// describes sitting immediately before every arena allocation. In Go there
// is no raw memory to place it in front of, so it is embedded directly in
// the allocated struct; the accounting it performs is identical.
//
// create() (NewDefinition/NewInstance below) leaves count at zero — the
// first retain brings it to one, matching the "transient allocation freed
// cheaply if nobody ever retains" reading spec.md §4.2 offers as the chosen
// convention.
type arenaHeader struct {
	count    int
	onRefZero func()
}

func (h *arenaHeader) retain() { h.count++ }

func (h *arenaHeader) release() {
	h.count--
	if h.count == 0 && h.onRefZero != nil {
		h.onRefZero()
		h.onRefZero = nil
	}
}

// refCount exposes the live count for tests asserting spec.md §8's
// "ref balance" law and property 3.
func (h *arenaHeader) refCount() int { return h.count }

// Field describes one instance or static field of an aggregate definition
// (spec.md §3 "Aggregate definition").
type Field struct {
	Name   string
	Tag    Tag
	Offset int // bytes
}

// destructionFlag is spec.md §3's "flags byte" bit 0x2: "instances require
// destruction". No other bit is defined by the spec, so Definition exposes
// it as a bool rather than carrying a full unused bitmask.
const destructionFlag = 0x2

// Definition is the reference-counted aggregate-definition record of
// spec.md §3. It is created by the struct-literal parser (struct.go),
// referenced by STRUCT-tagged cells and by the leading cell of every
// STRUCT_INSTANCE/OBJECT of it, and torn down when its ref count reaches
// zero.
type Definition struct {
	arenaHeader

	Name             string // informational only (spec.md §4.8)
	InstanceFields   []Field
	InstanceSize     int // bytes
	StaticFields     []Field
	StaticSize       int // bytes
	StaticData       []uint64 // static method FUNCTION values, indexed by Offset/8
	needsDestruction bool
}

// NewDefinition allocates a definition record with a zero ref count (the
// object-arena "create" operation of spec.md §4.2).
func NewDefinition(name string) *Definition {
	d := &Definition{Name: name}
	d.onRefZero = d.destroy
	return d
}

func (d *Definition) RequiresDestruction() bool { return d.needsDestruction }

func (d *Definition) setRequiresDestruction(v bool) { d.needsDestruction = v }

// destroy runs when the ref count reaches zero: free static_data. Every
// producible static field today is a FUNCTION value (an index into the
// context's function table, not itself a reference - see struct.go), so
// there is nothing further to
// release there; only instance-field references embedded in live
// STRUCT_INSTANCE/OBJECT values need releasing, and those are handled by
// Stack.destroy and Instance.destroy respectively, not here.
func (d *Definition) destroy() {
	d.StaticData = nil
}

// FindInstanceField looks a field up by name before any address is
// computed — spec.md §9(b)'s fix for the original's uninitialized-field
// bug ("the field pointer is dereferenced before being set").
func (d *Definition) FindInstanceField(name string) (Field, bool) {
	for _, f := range d.InstanceFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d *Definition) FindStaticField(name string) (Field, bool) {
	for _, f := range d.StaticFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Instance is a heap-allocated aggregate (spec.md §3's OBJECT tag): "same
// shape as STRUCT_INSTANCE but on the heap". It retains its Definition for
// its own lifetime.
type Instance struct {
	arenaHeader

	Def   *Definition
	Bytes []byte
	Refs  map[int]Ref // field byte offset -> retained reference, for ref-bearing fields only
}

// NewInstance allocates a heap aggregate of def, retaining def for the
// instance's lifetime. The ref count starts at zero, as with Definition.
func NewInstance(def *Definition) *Instance {
	def.retain()
	inst := &Instance{Def: def, Bytes: make([]byte, def.InstanceSize)}
	inst.onRefZero = inst.destroy
	return inst
}

func (o *Instance) destroy() {
	if o.Def.RequiresDestruction() {
		releaseFieldRefs(o.Def, func(offset int) (Ref, bool) {
			r, ok := o.Refs[offset]
			return r, ok
		})
	}
	o.Def.release()
	o.Bytes = nil
	o.Refs = nil
}

// releaseFieldRefs walks def's instance fields and releases any ref-bearing
// field's reference, via getRef (which maps a field's declared byte offset
// to its currently held Ref, if any). Shared by Instance.destroy and the
// stack's STRUCT_INSTANCE span teardown (stack.go).
func releaseFieldRefs(def *Definition, getRef func(offset int) (Ref, bool)) {
	for _, f := range def.InstanceFields {
		if !f.Tag.isRef() {
			continue
		}
		if r, ok := getRef(f.Offset); ok && r != nil {
			r.release()
		}
	}
}
