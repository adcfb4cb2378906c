package interpreter

import "encoding/binary"

// GetField implements spec.md §4.9 field access: base is the stack index of
// a STRUCT_INSTANCE span (resolved via Stack.Get), name is the field being
// read. Heap OBJECT values are read through GetObjectField instead. The field must be looked up by name before any byte
// offset is touched — spec.md §9(b)'s fix for the original implementation's
// bug where the field pointer was dereferenced before being resolved.
func (c *Context) GetField(base int, name string) (Value, error) {
	def, ok := c.Stack.DefinitionAt(base)
	if !ok || def == nil {
		return Value{}, ErrTypeMismatch
	}
	field, found := def.FindInstanceField(name)
	if !found {
		return Value{}, ErrUndefined
	}
	data := c.Stack.InstanceBytes(base)
	if field.Tag.isRef() {
		r, _ := c.Stack.InstanceFieldRef(base, field.Offset)
		return Value{Tag: field.Tag, Ref: r}, nil
	}
	size := field.Tag.byteSize()
	if size == 0 {
		size = 8
	}
	buf := make([]byte, 8)
	copy(buf, data[field.Offset:field.Offset+size])
	return Value{Tag: field.Tag, Bits: binary.LittleEndian.Uint64(buf)}, nil
}

// SetField implements spec.md §4.9 field write: releases whatever
// reference the field currently holds (if any), checks assignability, and
// writes the new bytes/reference in place.
func (c *Context) SetField(base int, name string, v Value) error {
	def, ok := c.Stack.DefinitionAt(base)
	if !ok || def == nil {
		return ErrTypeMismatch
	}
	field, found := def.FindInstanceField(name)
	if !found {
		return ErrUndefined
	}
	if !field.Tag.Assignable(v.Tag) {
		return ErrTypeMismatch
	}
	data := c.Stack.InstanceBytes(base)
	if field.Tag.isRef() {
		if old, ok := c.Stack.InstanceFieldRef(base, field.Offset); ok && old != nil {
			old.release()
		}
		if v.Ref != nil {
			v.Ref.retain()
		}
		c.Stack.setInstanceFieldRef(base, field.Offset, v.Ref)
		return nil
	}
	size := field.Tag.byteSize()
	if size == 0 {
		size = 8
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v.Bits)
	copy(data[field.Offset:field.Offset+size], buf[:size])
	return nil
}

// GetObjectField reads a field off a heap-allocated OBJECT value (spec.md
// §3's Instance, the optional heap-backed twin of STRUCT_INSTANCE). No
// source grammar in this interpreter constructs an Instance directly, but
// the accessor is kept symmetric with GetField/SetField so a host embedding
// this package (building OBJECT values itself via NewInstance) has a
// working field API to call.
func (c *Context) GetObjectField(v Value, name string) (Value, error) {
	inst, ok := v.Ref.(*Instance)
	if !ok || inst == nil {
		return Value{}, ErrTypeMismatch
	}
	field, found := inst.Def.FindInstanceField(name)
	if !found {
		return Value{}, ErrUndefined
	}
	if field.Tag.isRef() {
		return Value{Tag: field.Tag, Ref: inst.Refs[field.Offset]}, nil
	}
	size := field.Tag.byteSize()
	if size == 0 {
		size = 8
	}
	buf := make([]byte, 8)
	copy(buf, inst.Bytes[field.Offset:field.Offset+size])
	return Value{Tag: field.Tag, Bits: binary.LittleEndian.Uint64(buf)}, nil
}

// SetObjectField writes a field on a heap-allocated OBJECT value. See
// GetObjectField.
func (c *Context) SetObjectField(v Value, name string, val Value) error {
	inst, ok := v.Ref.(*Instance)
	if !ok || inst == nil {
		return ErrTypeMismatch
	}
	field, found := inst.Def.FindInstanceField(name)
	if !found {
		return ErrUndefined
	}
	if !field.Tag.Assignable(val.Tag) {
		return ErrTypeMismatch
	}
	if field.Tag.isRef() {
		if old := inst.Refs[field.Offset]; old != nil {
			old.release()
		}
		if val.Ref != nil {
			val.Ref.retain()
		}
		if inst.Refs == nil {
			inst.Refs = make(map[int]Ref)
		}
		inst.Refs[field.Offset] = val.Ref
		return nil
	}
	size := field.Tag.byteSize()
	if size == 0 {
		size = 8
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, val.Bits)
	copy(inst.Bytes[field.Offset:field.Offset+size], buf[:size])
	return nil
}

// GetStaticField reads a struct definition's static field directly off
// def, bypassing any instance (spec.md §4.9 "Def.field" form). Every static
// field is a static method's FUNCTION value (see parseStructLayout).
func (c *Context) GetStaticField(def *Definition, name string) (Value, error) {
	field, found := def.FindStaticField(name)
	if !found {
		return Value{}, ErrUndefined
	}
	idx := field.Offset / 8
	if idx >= len(def.StaticData) {
		return Value{}, ErrUndefined
	}
	return Value{Tag: field.Tag, Bits: def.StaticData[idx]}, nil
}

// SetStaticField writes a struct definition's static field. Static fields
// never hold arena references (a FUNCTION value's Bits is an index into the
// context's function table — see function.go), so there is nothing to
// release on overwrite.
func (c *Context) SetStaticField(def *Definition, name string, v Value) error {
	field, found := def.FindStaticField(name)
	if !found {
		return ErrUndefined
	}
	if !field.Tag.Assignable(v.Tag) {
		return ErrTypeMismatch
	}
	idx := field.Offset / 8
	if idx >= len(def.StaticData) {
		return ErrUndefined
	}
	def.StaticData[idx] = v.Bits
	return nil
}

// ParseStructDefinition implements spec.md §4.8: the cursor is positioned
// just past the "struct" keyword, at an optional struct name and then the
// opening '{'. It lifts out the balanced field-list span, consults the
// layout cache keyed on that span's raw text (struct.go's own parse is
// deterministic over the bytes, so a cache hit is always a correct reuse —
// see cache.go), builds a fresh, independently reference-counted Definition
// from the resulting layout, wires each cached static method into a real
// FunctionDef at this literal's actual source position, and returns the
// definition as a TagStruct value.
func (c *Context) ParseStructDefinition() (Value, error) {
	c.Cursor.SkipSpaces()
	name := ""
	if isAlpha(c.Cursor.Peek()) {
		savedPos := c.Cursor.pos
		if n, ok := c.Cursor.ParseIdentifier(); ok {
			name = n
		} else {
			c.Cursor.Seek(savedPos)
		}
	}
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() != '{' {
		return Value{}, ErrSyntax
	}
	c.Cursor.Advance()
	spanStart := c.Cursor.Pos()
	span, err := c.Cursor.ScanBalanced()
	if err != nil {
		return Value{}, err
	}
	lay, ok := c.layouts.get(span)
	if !ok {
		lay, err = parseStructLayout(span)
		if err != nil {
			return Value{}, err
		}
		c.layouts.put(span, lay)
	}
	def := NewDefinition(name)
	def.InstanceFields = lay.instanceFields
	def.InstanceSize = lay.instanceSize
	def.StaticFields = lay.staticFields
	def.StaticSize = lay.staticSize
	def.StaticData = make([]uint64, (lay.staticSize+7)/8)
	def.setRequiresDestruction(lay.needsDestruct)

	for _, m := range lay.methods {
		fd := FunctionDef{
			Bound:       m.Bound,
			Params:      m.Params,
			ReturnTag:   m.ReturnTag,
			BodyOffset:  spanStart + m.RelBodyStart,
			BodyEnd:     spanStart + m.RelBodyEnd,
			IsBlockBody: m.IsBlockBody,
		}
		idx := len(c.functions)
		c.functions = append(c.functions, fd)
		// A FUNCTION value carries no arena reference (tags.go's isRef is
		// false for TagFunction), so writing the raw function index directly
		// into static_data needs no retain/release bookkeeping.
		def.StaticData[m.Field.Offset/8] = uint64(idx)
	}

	return Value{Tag: TagStruct, Ref: def}, nil
}

// parseStructLayout scans a struct literal's field-list span (the text
// between '{' and '}', not including either brace) into instance and static
// field tables. Grammar (spec.md §4.8):
//
//	field    := typename identifier
//	          | typename identifier funcShape   // static method
//	typename := primitive-type-keyword | struct-name
//
// A field is a static method exactly when its identifier is immediately
// followed by '[' or '(' — the same lookahead evalTypePrefixed uses at
// top level (eval.go) — in which case parseFunctionShape consumes the rest
// and the field occupies a FUNCTION-sized static slot. Otherwise it is a
// plain instance field: no initializer syntax exists for one, since no
// instance exists yet to hold a value in (spec.md §4.8's "instance fields
// are zero-valued until first assignment").
func parseStructLayout(span string) (layout, error) {
	cur := NewCursor(span)
	var lay layout
	instanceOffset, staticOffset := 0, 0

	for {
		cur.SkipSpaces()
		if cur.Eof() {
			break
		}
		name, ok := cur.ParseIdentifier()
		if !ok {
			return layout{}, ErrSyntax
		}
		var tag Tag
		if t, ok := primitiveTagBySpelling(name); ok {
			tag = t
		} else {
			// A bare identifier naming another struct type: the field is
			// recorded as a STRUCT-tagged (definition reference) field; the
			// name itself is not resolved.
			tag = TagStruct
		}

		cur.SkipSpaces()
		fieldName, ok := cur.ParseIdentifier()
		if !ok {
			return layout{}, ErrSyntax
		}

		cur.SkipSpaces()
		if cur.Peek() == '[' || cur.Peek() == '(' {
			shape, err := parseFunctionShape(cur)
			if err != nil {
				return layout{}, err
			}
			field := Field{Name: fieldName, Tag: TagFunction, Offset: staticOffset}
			lay.staticFields = append(lay.staticFields, field)
			lay.methods = append(lay.methods, methodLayout{
				Field:        field,
				Bound:        shape.Bound,
				Params:       shape.Params,
				ReturnTag:    tag,
				RelBodyStart: shape.BodyOffset,
				RelBodyEnd:   shape.BodyEnd,
				IsBlockBody:  shape.IsBlockBody,
			})
			staticOffset += 8
			cur.SkipSpaces()
			if cur.Peek() == ';' {
				cur.Advance()
			}
			continue
		}

		cur.SkipSpaces()
		if cur.Peek() != ';' {
			return layout{}, ErrSyntax
		}
		cur.Advance()

		size := tag.byteSize()
		if size == 0 {
			size = 8
		}
		field := Field{Name: fieldName, Tag: tag, Offset: instanceOffset}
		lay.instanceFields = append(lay.instanceFields, field)
		instanceOffset += size
		if tag.isRef() {
			lay.needsDestruct = true
		}
	}

	lay.instanceSize = instanceOffset
	lay.staticSize = staticOffset
	return lay, nil
}
