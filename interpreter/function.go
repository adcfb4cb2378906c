package interpreter

// FunctionDef is the parsed (but not yet bound to any call) shape of a
// function literal (spec.md §4.10): the parameter declarations the call
// protocol binds incoming arguments against, the body's source span for
// re-entrant evaluation, and, for a bound function, the names listed in its
// "[...]" header, which the call protocol looks up in the scope active at
// call time and re-binds in the callee's scope.
type FunctionDef struct {
	Bound       []string
	Params      []FunctionParam
	ReturnTag   Tag // the declared type the literal followed (spec.md §4.6's Type(T))
	BodyOffset  int
	BodyEnd     int
	IsBlockBody bool // "{ ... }" body vs. a single trailing expression
}

// FunctionParam is one declared parameter: its declared tag fixes the
// slot's assignability exactly as a "let"/primitive-typed local would
// (spec.md §4.11 "parameter storage is parameter binding, not a copy").
type FunctionParam struct {
	Name string
	Tag  Tag
}

// functionShape is the bound-names/parameter-list/body-span a function
// literal parses down to, before it is attached to a Context's function
// table or a struct definition's static_data (spec.md §4.10). Keeping this
// as a free function of *Cursor (rather than a Context method) lets
// struct.go's cached layout parser run it over a struct literal's own
// private span-local cursor and get back span-relative offsets, while
// ParseFunctionLiteral runs it over the real source cursor and gets back
// absolute ones — same grammar, same code, different coordinate space.
type functionShape struct {
	Bound       []string
	Params      []FunctionParam
	BodyOffset  int
	BodyEnd     int
	IsBlockBody bool
}

// parseFunctionShape implements spec.md §4.10. cur is positioned at the
// optional bound-capture header's '[' or directly at the parameter list's
// '(' — spec.md's dispatch table opens a function literal the moment a
// type classification is immediately followed by one of those two
// characters; there is no "function" keyword in this grammar.
//
//	funcLiteral := ["[" boundNames "]"] "(" params ")" ["=>"] (block | expr)
//	boundNames  := identifier ("," identifier)*
//	params      := (typename identifier ("," typename identifier)*)?
func parseFunctionShape(cur *Cursor) (functionShape, error) {
	var shape functionShape
	cur.SkipSpaces()

	if cur.Peek() == '[' {
		cur.Advance()
		for {
			cur.SkipSpaces()
			if cur.Peek() == ']' {
				cur.Advance()
				break
			}
			name, ok := cur.ParseIdentifier()
			if !ok {
				return functionShape{}, ErrSyntax
			}
			shape.Bound = append(shape.Bound, name)
			cur.SkipSpaces()
			if cur.Peek() == ',' {
				cur.Advance()
				continue
			}
			if cur.Peek() == ']' {
				cur.Advance()
				break
			}
			return functionShape{}, ErrSyntax
		}
		cur.SkipSpaces()
	}

	if cur.Peek() != '(' {
		return functionShape{}, ErrSyntax
	}
	cur.Advance()
	for {
		cur.SkipSpaces()
		if cur.Peek() == ')' {
			cur.Advance()
			break
		}
		typeName, ok := cur.ParseIdentifier()
		if !ok {
			return functionShape{}, ErrSyntax
		}
		tag, ok := primitiveTagBySpelling(typeName)
		if !ok {
			tag = TagStruct
		}
		cur.SkipSpaces()
		paramName, ok := cur.ParseIdentifier()
		if !ok {
			return functionShape{}, ErrSyntax
		}
		shape.Params = append(shape.Params, FunctionParam{Name: paramName, Tag: tag})
		cur.SkipSpaces()
		if cur.Peek() == ',' {
			cur.Advance()
			continue
		}
		if cur.Peek() == ')' {
			cur.Advance()
			break
		}
		return functionShape{}, ErrSyntax
	}

	cur.SkipSpaces()
	if cur.Peek() == '=' && cur.PeekAt(1) == '>' {
		cur.Advance()
		cur.Advance()
		cur.SkipSpaces()
	}

	if cur.Peek() == '{' {
		cur.Advance()
		shape.BodyOffset = cur.Pos()
		span, err := cur.ScanBalanced()
		if err != nil {
			return functionShape{}, err
		}
		shape.BodyEnd = shape.BodyOffset + len(span)
		shape.IsBlockBody = true
		return shape, nil
	}

	// Single-expression body (spec.md §4.10): consume until ';' or EOF
	// without evaluating anything — this is a skip pass only, run while
	// the *enclosing* expression is being parsed.
	shape.BodyOffset = cur.Pos()
	for !cur.Eof() && cur.Peek() != ';' {
		cur.Advance()
	}
	shape.BodyEnd = cur.Pos()
	return shape, nil
}

// ParseFunctionLiteral implements spec.md §4.10 against the real source
// cursor: the cursor is positioned at the literal's '[' or '(' (a type
// classification immediately followed by one of those two characters is
// what triggers this — see eval.go's evalTypePrefixed). returnTag is the
// declared type the literal followed ("void" for a function whose result is
// always discarded). The returned Value carries a TagFunction tag; its Bits
// is an index into c.functions, since a function's shape does not fit in 8
// bytes the way a primitive's does.
func (c *Context) ParseFunctionLiteral(returnTag Tag) (Value, error) {
	shape, err := parseFunctionShape(c.Cursor)
	if err != nil {
		return Value{}, err
	}
	def := FunctionDef{
		Bound:       shape.Bound,
		Params:      shape.Params,
		ReturnTag:   returnTag,
		BodyOffset:  shape.BodyOffset,
		BodyEnd:     shape.BodyEnd,
		IsBlockBody: shape.IsBlockBody,
	}
	idx := len(c.functions)
	c.functions = append(c.functions, def)
	return Value{Tag: TagFunction, Bits: uint64(idx)}, nil
}

// FunctionAt returns the parsed definition referenced by a TagFunction
// value's Bits field.
func (c *Context) FunctionAt(v Value) (*FunctionDef, bool) {
	idx := int(v.Bits)
	if idx < 0 || idx >= len(c.functions) {
		return nil, false
	}
	return &c.functions[idx], true
}
