package interpreter

import (
	"encoding/binary"
	"math"
)

// stackCapacityCells bounds the evaluation stack to a fixed-size array so
// that pushes never reallocate mid-evaluation — the same "fixed capacity,
// no reallocation" design the teacher uses for its value stack (ground:
// go/interpreter/lfvm/stack.go's 1024-entry `data` array).
const stackCapacityCells = 8192

// Value is a caller-facing view of a single-cell stack value: a tag, its
// raw 8-byte bit pattern (reinterpreted per tag — see the encode/decode
// helpers below), and, for reference-bearing tags, the arena reference it
// carries. It is the unit Push/Pop/Set exchange for anything that is not a
// multi-cell aggregate instance (those are addressed by stack index via
// StackView instead).
type Value struct {
	Tag  Tag
	Bits uint64
	Ref  Ref
}

func ValueI8(v int8) Value   { return Value{Tag: TagI8, Bits: uint64(uint8(v))} }
func ValueU8(v uint8) Value  { return Value{Tag: TagU8, Bits: uint64(v)} }
func ValueI16(v int16) Value { return Value{Tag: TagI16, Bits: uint64(uint16(v))} }
func ValueU16(v uint16) Value { return Value{Tag: TagU16, Bits: uint64(v)} }
func ValueI32(v int32) Value { return Value{Tag: TagI32, Bits: uint64(uint32(v))} }
func ValueU32(v uint32) Value { return Value{Tag: TagU32, Bits: uint64(v)} }
func ValueI64(v int64) Value { return Value{Tag: TagI64, Bits: uint64(v)} }
func ValueU64(v uint64) Value { return Value{Tag: TagU64, Bits: v} }
func ValueF32(v float32) Value {
	return Value{Tag: TagF32, Bits: uint64(math.Float32bits(v))}
}
func ValueF64(v float64) Value { return Value{Tag: TagF64, Bits: math.Float64bits(v)} }
func ValuePtr(v uint64) Value  { return Value{Tag: TagPtr, Bits: v} }

func (v Value) AsI32() int32 { return int32(uint32(v.Bits)) }

// SignedInt64 sign-extends a narrower integer tag's bits to int64, for
// callers (print, comparisons) that want one numeric read regardless of
// declared width.
func (v Value) SignedInt64() int64 {
	switch v.Tag.Base() {
	case TagI8:
		return int64(int8(uint8(v.Bits)))
	case TagI16:
		return int64(int16(uint16(v.Bits)))
	case TagI32:
		return int64(v.AsI32())
	default:
		return v.AsI64()
	}
}
func (v Value) AsU32() uint32  { return uint32(v.Bits) }
func (v Value) AsI64() int64   { return int64(v.Bits) }
func (v Value) AsU64() uint64  { return v.Bits }
func (v Value) AsF32() float32 { return math.Float32frombits(uint32(v.Bits)) }
func (v Value) AsF64() float64 { return math.Float64frombits(v.Bits) }
func (v Value) AsDefinition() *Definition {
	if d, ok := v.Ref.(*Definition); ok {
		return d
	}
	return nil
}

// StackView describes a value located at or around a given stack index,
// resolved per §4.1 Get: a single cell for primitives/references, or a
// full [Base, Base+Span) span for a STRUCT_INSTANCE.
type StackView struct {
	Tag  Tag
	Base int
	Span int
}

// Stack is the fixed-capacity typed value stack of spec.md §3/§4.1. tags
// and bytes are parallel arrays (one Tag, 8 bytes per cell); refs holds the
// arena reference owned by a cell, keyed by that cell's absolute byte
// offset so that both top-level reference cells (STRUCT/OBJECT, or the
// leading cell of a STRUCT_INSTANCE span) and ref-bearing instance fields
// nested inside a STRUCT_INSTANCE span (keyed by their own byte offset)
// share one lookup.
type Stack struct {
	tags  []Tag
	bytes []byte
	refs  map[int]Ref
	top   int
}

func NewStack() *Stack {
	return &Stack{
		tags:  make([]Tag, stackCapacityCells),
		bytes: make([]byte, stackCapacityCells*8),
		refs:  make(map[int]Ref),
	}
}

func (s *Stack) Top() int { return s.top }

func (s *Stack) cellBytes(cell int) []byte { return s.bytes[cell*8 : cell*8+8] }

// Push writes v at the current top and advances top by one cell, retaining
// v.Ref if the tag carries one — the stack now has one more live holder of
// that reference than before the call (spec.md §4.1 push).
func (s *Stack) Push(v Value) (int, error) {
	if v.Tag == TagStructInstance || v.Tag == TagStructEnd {
		return 0, ConstError("push: use PushStructInstance for aggregate spans")
	}
	if s.top >= stackCapacityCells {
		return 0, ErrStackOverflow
	}
	base := s.top
	s.tags[base] = v.Tag
	binary.LittleEndian.PutUint64(s.cellBytes(base), v.Bits)
	offset := base * 8
	if v.Tag.isRef() {
		if v.Ref != nil {
			v.Ref.retain()
		}
		s.refs[offset] = v.Ref
	} else {
		delete(s.refs, offset)
	}
	s.top++
	return base, nil
}

// PushOwned writes v at the current top without retaining v.Ref: for
// relocating a value the caller already owns a single retain of (obtained
// via take(), e.g. a block's trailing result or a call's return value)
// into a new slot, as opposed to Push's "brand new holder" semantics.
func (s *Stack) PushOwned(v Value) (int, error) {
	if v.Tag == TagStructInstance || v.Tag == TagStructEnd {
		return 0, ConstError("pushOwned: use PushStructInstance for aggregate spans")
	}
	if s.top >= stackCapacityCells {
		return 0, ErrStackOverflow
	}
	base := s.top
	s.tags[base] = v.Tag
	binary.LittleEndian.PutUint64(s.cellBytes(base), v.Bits)
	offset := base * 8
	if v.Tag.isRef() {
		s.refs[offset] = v.Ref
	} else {
		delete(s.refs, offset)
	}
	s.top++
	return base, nil
}

// PushStructInstance allocates a zero-filled inline STRUCT_INSTANCE span
// for def at the current top: a leading cell tagged STRUCT_INSTANCE
// carrying a retained reference to def, interior field bytes, and a
// trailing STRUCT_END sentinel cell (spec.md §3 "STRUCT_INSTANCE").
func (s *Stack) PushStructInstance(def *Definition) (int, error) {
	span := structInstanceSpan(def)
	if s.top+span > stackCapacityCells {
		return 0, ErrStackOverflow
	}
	base := s.top
	for i := 0; i < span; i++ {
		s.tags[base+i] = TagStructInstance
	}
	s.tags[base+span-1] = TagStructEnd
	def.retain()
	s.refs[base*8] = def
	clear(s.bytes[base*8 : (base+span)*8])
	s.top += span
	return base, nil
}

// structInstanceSpan is ceil((8 + instance_size) / 8), per spec.md §8
// property 4.
func structInstanceSpan(def *Definition) int {
	return (8 + def.InstanceSize + 7) / 8
}

// Get resolves the value at or around index: scanning backward from a
// STRUCT_END to its STRUCT_INSTANCE base, or forward from a
// STRUCT_INSTANCE to its STRUCT_END (spec.md §4.1 get).
func (s *Stack) Get(index int) (StackView, error) {
	if index < 0 || index >= s.top {
		return StackView{}, ErrStackUnderflow
	}
	tag := s.tags[index]
	switch tag {
	case TagStructEnd:
		base := index
		for base > 0 && s.tags[base-1] == TagStructInstance {
			base--
		}
		return StackView{Tag: TagStructInstance, Base: base, Span: index - base + 1}, nil
	case TagStructInstance:
		end := index
		for end < s.top && s.tags[end] != TagStructEnd {
			end++
		}
		return StackView{Tag: TagStructInstance, Base: index, Span: end - index + 1}, nil
	default:
		return StackView{Tag: tag, Base: index, Span: 1}, nil
	}
}

// ValueAt reads the single-cell value at index (tag must not be part of a
// multi-cell span); used for scalar reads such as scope-variable lookups.
func (s *Stack) ValueAt(index int) (Value, error) {
	view, err := s.Get(index)
	if err != nil {
		return Value{}, err
	}
	if view.Span != 1 {
		return Value{}, ConstError("value at index is a multi-cell aggregate")
	}
	v := Value{Tag: s.tags[index], Bits: binary.LittleEndian.Uint64(s.cellBytes(index))}
	if v.Tag.isRef() {
		v.Ref = s.refs[index*8]
	}
	return v, nil
}

// DefinitionAt returns the Definition referenced by a STRUCT-tagged cell,
// or by the leading cell of a STRUCT_INSTANCE span, at the given base
// index. Unlike Get, this does not require index < top: destructInstanceSpan
// calls it after take() has already lowered top past the span being torn
// down.
func (s *Stack) DefinitionAt(index int) (*Definition, bool) {
	r := s.refs[index*8]
	d, ok := r.(*Definition)
	return d, ok
}

// InstanceBytes returns the field-data byte slice (excluding the leading
// 8-byte definition reference) of the STRUCT_INSTANCE span rooted at
// stack index base, live until the next stack mutation.
func (s *Stack) InstanceBytes(base int) []byte {
	return s.bytes[base*8+8 : base*8+8+s.instanceDataLen(base)]
}

func (s *Stack) instanceDataLen(base int) int {
	d, _ := s.DefinitionAt(base)
	if d == nil {
		return 0
	}
	return d.InstanceSize
}

// InstanceFieldRef returns the reference held by a ref-bearing field at
// byte offset within the STRUCT_INSTANCE span rooted at stack index base.
func (s *Stack) InstanceFieldRef(base, offset int) (Ref, bool) {
	r, ok := s.refs[base*8+8+offset]
	return r, ok
}

func (s *Stack) setInstanceFieldRef(base, offset int, r Ref) {
	s.refs[base*8+8+offset] = r
}

// Set overwrites the value at index: it first checks assignability (§4.1
// rule), so a rejected assignment leaves the slot untouched, then destructs
// whatever currently lives there (§4.1 "Destruction on overwrite"), then
// writes v in place, retaining v.Ref the same way Push
// does — an assignment's source is a live read (of a variable, a field, a
// call result) that keeps its own holder, so the new slot needs its own
// additional retain, not a transfer of someone else's.
func (s *Stack) Set(index int, v Value) error {
	view, err := s.Get(index)
	if err != nil {
		return err
	}
	if view.Span != 1 {
		return ConstError("set: multi-cell aggregate targets are not supported by scalar Set")
	}
	current := s.tags[index]
	if !current.Assignable(v.Tag) {
		return ErrTypeMismatch
	}
	s.destructCell(index)
	resolved := v.Tag
	if current.IsDynamic() {
		resolved = v.Tag.withDynamic()
	}
	s.tags[index] = resolved
	binary.LittleEndian.PutUint64(s.cellBytes(index), v.Bits)
	offset := index * 8
	if resolved.isRef() {
		if v.Ref != nil {
			v.Ref.retain()
		}
		s.refs[offset] = v.Ref
	} else {
		delete(s.refs, offset)
	}
	return nil
}

// destructCell releases whatever reference the single cell at index
// currently holds, without touching top. Used by Set before an overwrite.
func (s *Stack) destructCell(index int) {
	tag := s.tags[index]
	if !tag.isRef() {
		return
	}
	if r, ok := s.refs[index*8]; ok && r != nil {
		r.release()
	}
	delete(s.refs, index*8)
}

// take removes the top value from the stack and returns it to the caller
// WITHOUT releasing any reference it carries: ownership moves from the
// vacated slot to whoever called take (typically immediately handed to
// PushOwned, relocating the same retained reference to a new slot — see
// eval.go's declaration and call-argument handling and call.go's
// return-value shuffle). This
// is the "move" half of spec.md §4.1's pop description; Pop (below) is the
// "discard" half that actually releases.
func (s *Stack) take() (Value, StackView, error) {
	if s.top == 0 {
		return Value{}, StackView{}, ErrStackUnderflow
	}
	view, err := s.Get(s.top - 1)
	if err != nil {
		return Value{}, StackView{}, err
	}
	if view.Span != 1 {
		v := Value{Tag: view.Tag}
		s.top = view.Base
		return v, view, nil
	}
	idx := view.Base
	v := Value{Tag: s.tags[idx], Bits: binary.LittleEndian.Uint64(s.cellBytes(idx))}
	if v.Tag.isRef() {
		v.Ref = s.refs[idx*8]
		delete(s.refs, idx*8)
	}
	s.top = idx
	return v, view, nil
}

// Pop removes and destructs the top value (spec.md §4.1 pop): any
// reference it — or, for a STRUCT_INSTANCE whose definition requires
// destruction, its fields — held is released.
func (s *Stack) Pop() (Value, error) {
	if s.top == 0 {
		return Value{}, ErrStackUnderflow
	}
	v, view, err := s.take()
	if err != nil {
		return Value{}, err
	}
	switch view.Tag {
	case TagStructInstance:
		s.destructInstanceSpan(view)
	default:
		if v.Tag.isRef() && v.Ref != nil {
			v.Ref.release()
		}
	}
	return v, nil
}

// destructInstanceSpan implements §4.1's STRUCT_INSTANCE destruction: if
// the definition requires it, release every ref-bearing instance field,
// then release the definition reference held by the leading cell. An
// instance field is never itself a STRUCT_INSTANCE span (a struct-named
// field is a single STRUCT reference), so no nested span is walked.
func (s *Stack) destructInstanceSpan(view StackView) {
	def, _ := s.DefinitionAt(view.Base)
	if def == nil {
		return
	}
	if def.RequiresDestruction() {
		releaseFieldRefs(def, func(offset int) (Ref, bool) {
			return s.InstanceFieldRef(view.Base, offset)
		})
	}
	def.release()
}

// Truncate pops-with-destruction down to watermark (in cells), used by the
// block executor between statements and at block exit (spec.md §4.7).
func (s *Stack) Truncate(watermark int) {
	for s.top > watermark {
		if _, err := s.Pop(); err != nil {
			break
		}
	}
}

// Iterate calls fn for each logical value from the top of the stack
// downward (top-of-stack = first, i.e. last-pushed argument first), per
// spec.md §4.1's read-only iterator used by host functions to enumerate
// call arguments. fn returning false stops iteration early.
func (s *Stack) Iterate(fn func(StackView) bool) {
	idx := s.top - 1
	for idx >= 0 {
		view, err := s.Get(idx)
		if err != nil {
			return
		}
		if !fn(view) {
			return
		}
		idx = view.Base - 1
	}
}
