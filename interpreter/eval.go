package interpreter

import "strconv"

// EvalExpression implements spec.md §4.6: the single dispatch loop that
// classifies the next token and evaluates exactly one expression or
// declaration, returning its result. A declaration or a call also leaves a
// cell on the stack; other forms push nothing. It is the one entry point
// every other piece of the interpreter (Run, block.go, call.go) re-enters
// through, matching the
// fused single-pass parse/eval design — there is no separate AST stage to
// recurse over.
func (c *Context) EvalExpression() (Value, error) {
	c.Cursor.SkipSpaces()
	if v, handled, err := c.tryAssignment(); handled {
		return v, err
	}
	return c.evalComparison()
}

// tryAssignment looks ahead for "identifier = expr" (not "==") or
// "identifier.field = expr", the two assignable forms spec.md §4.1 "Set"
// and §4.9's write counterpart describe: a plain already-declared variable,
// or one of its instance/static fields, directly followed by '='. Anything
// else rewinds the cursor so the caller re-parses the same text as an
// ordinary expression.
func (c *Context) tryAssignment() (Value, bool, error) {
	start := c.Cursor.pos
	if !isAlpha(c.Cursor.Peek()) {
		return Value{}, false, nil
	}
	name, ok := c.Cursor.ParseIdentifier()
	if !ok {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	class := c.Classify(name)
	if class.Kind != ClassVariable && class.Kind != ClassStructType {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() == '.' {
		return c.tryFieldAssignment(start, class.Index)
	}
	if class.Kind != ClassVariable || c.Cursor.Peek() != '=' || c.Cursor.PeekAt(1) == '=' {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	c.Cursor.Advance()

	rhs, err := c.EvalExpression()
	if err != nil {
		return Value{}, true, err
	}
	if err := c.Stack.Set(class.Index, rhs); err != nil {
		return Value{}, true, err
	}
	result, err := c.Stack.ValueAt(class.Index)
	return result, true, err
}

// tryFieldAssignment implements "instanceVar.field = expr" and
// "structVar.field = expr" (spec.md §4.9's write counterpart to field
// access — needed to ever populate a STRUCT_INSTANCE's fields after §4.5's
// struct-typed declaration leaves them zero-valued). Only a single field
// hop is supported: no grammar in spec.md nests a struct field inside
// another struct instance field's access position. varIndex is the stack
// index class.Index resolved "name" to; the '.' has not yet been consumed.
func (c *Context) tryFieldAssignment(start, varIndex int) (Value, bool, error) {
	view, err := c.Stack.Get(varIndex)
	if err != nil {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	c.Cursor.Advance() // '.'
	c.Cursor.SkipSpaces()
	field, ok := c.Cursor.ParseIdentifier()
	if !ok {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() != '=' || c.Cursor.PeekAt(1) == '=' {
		c.Cursor.Seek(start)
		return Value{}, false, nil
	}
	c.Cursor.Advance()

	rhs, err := c.EvalExpression()
	if err != nil {
		return Value{}, true, err
	}

	switch view.Tag {
	case TagStructInstance:
		if err := c.SetField(view.Base, field, rhs); err != nil {
			return Value{}, true, err
		}
		result, err := c.GetField(view.Base, field)
		return result, true, err
	case TagStruct:
		def, ok := c.Stack.DefinitionAt(view.Base)
		if !ok || def == nil {
			return Value{}, true, ErrTypeMismatch
		}
		if err := c.SetStaticField(def, field, rhs); err != nil {
			return Value{}, true, err
		}
		result, err := c.GetStaticField(def, field)
		return result, true, err
	case TagObject:
		objVal, err := c.Stack.ValueAt(view.Base)
		if err != nil {
			return Value{}, true, err
		}
		if err := c.SetObjectField(objVal, field, rhs); err != nil {
			return Value{}, true, err
		}
		result, err := c.GetObjectField(objVal, field)
		return result, true, err
	default:
		return Value{}, true, ErrTypeMismatch
	}
}

// evalComparison, evalAdditive and evalMultiplicative implement the
// conventional precedence climb over spec.md §4.6's operator set: ==, !=,
// <, <=, >, >= bind loosest; +, - next; *, / tightest.
func (c *Context) evalComparison() (Value, error) {
	left, err := c.evalAdditive()
	if err != nil {
		return Value{}, err
	}
	for {
		op, ok := c.peekOperator("==", "!=", "<=", ">=", "<", ">")
		if !ok {
			return left, nil
		}
		c.consumeOperator(op)
		right, err := c.evalAdditive()
		if err != nil {
			return Value{}, err
		}
		left, err = applyBinaryOp(op, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

func (c *Context) evalAdditive() (Value, error) {
	left, err := c.evalMultiplicative()
	if err != nil {
		return Value{}, err
	}
	for {
		op, ok := c.peekOperator("+", "-")
		if !ok {
			return left, nil
		}
		c.consumeOperator(op)
		right, err := c.evalMultiplicative()
		if err != nil {
			return Value{}, err
		}
		left, err = applyBinaryOp(op, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

func (c *Context) evalMultiplicative() (Value, error) {
	left, err := c.evalUnary()
	if err != nil {
		return Value{}, err
	}
	for {
		op, ok := c.peekOperator("*", "/")
		if !ok {
			return left, nil
		}
		c.consumeOperator(op)
		right, err := c.evalUnary()
		if err != nil {
			return Value{}, err
		}
		left, err = applyBinaryOp(op, left, right)
		if err != nil {
			return Value{}, err
		}
	}
}

// peekOperator checks, without consuming, whether the cursor (after
// skipping spaces) is positioned at one of candidates, longest match
// first so "==" is not mistaken for "=".
func (c *Context) peekOperator(candidates ...string) (string, bool) {
	c.Cursor.SkipSpaces()
	for _, cand := range candidates {
		matched := true
		for i := 0; i < len(cand); i++ {
			if c.Cursor.PeekAt(i) != cand[i] {
				matched = false
				break
			}
		}
		if matched {
			return cand, true
		}
	}
	return "", false
}

func (c *Context) consumeOperator(op string) {
	for range op {
		c.Cursor.Advance()
	}
}

// evalUnary parses one primary/unary term: a numeric literal, a
// parenthesized expression, a leading "-", or an identifier (which may
// turn out to be a declaration keyword, a type prefix, a struct/function
// literal, or a bare variable reference — classify.go decides which).
func (c *Context) evalUnary() (Value, error) {
	c.Cursor.SkipSpaces()
	if c.Cursor.Eof() {
		return Value{}, ErrSyntax
	}

	b := c.Cursor.Peek()
	switch {
	case b == '(':
		c.Cursor.Advance()
		v, err := c.EvalExpression()
		if err != nil {
			return Value{}, err
		}
		c.Cursor.SkipSpaces()
		if c.Cursor.Peek() != ')' {
			return Value{}, ErrSyntax
		}
		c.Cursor.Advance()
		return c.evalSuffixes(v, -1)
	case b == '{':
		c.Cursor.Advance()
		v, ok, err := c.ExecuteBlock()
		if err != nil {
			return Value{}, err
		}
		if !ok {
			v = Value{Tag: TagVoid}
		}
		return c.evalSuffixes(v, -1)
	case b == '-':
		c.Cursor.Advance()
		v, err := c.evalUnary()
		if err != nil {
			return Value{}, err
		}
		return negate(v)
	case isDigit(b):
		v, err := c.parseNumericLiteral()
		if err != nil {
			return Value{}, err
		}
		return c.evalSuffixes(v, -1)
	case isAlpha(b):
		return c.evalIdentifierTerm()
	}
	return Value{}, ErrSyntax
}

func negate(v Value) (Value, error) {
	switch v.Tag.Base() {
	case TagI8:
		return ValueI8(-int8(uint8(v.Bits))), nil
	case TagI16:
		return ValueI16(-int16(uint16(v.Bits))), nil
	case TagI32:
		return ValueI32(-v.AsI32()), nil
	case TagI64:
		return ValueI64(-v.AsI64()), nil
	case TagF32:
		return ValueF32(-v.AsF32()), nil
	case TagF64:
		return ValueF64(-v.AsF64()), nil
	default:
		return Value{}, ErrTypeMismatch
	}
}

// parseNumericLiteral implements spec.md §4.6's digit branch: scan
// [0-9]+("."[0-9]+)?, then an optional type-suffix keyword (i8, u8, ...,
// f64), defaulting to i32 for an integer literal and f64 for one with a
// decimal point.
func (c *Context) parseNumericLiteral() (Value, error) {
	start := c.Cursor.pos
	for isDigit(c.Cursor.Peek()) {
		c.Cursor.Advance()
	}
	isFloat := false
	if c.Cursor.Peek() == '.' && isDigit(c.Cursor.PeekAt(1)) {
		isFloat = true
		c.Cursor.Advance()
		for isDigit(c.Cursor.Peek()) {
			c.Cursor.Advance()
		}
	}
	text := c.Cursor.src[start:c.Cursor.pos]

	suffix := ""
	if isAlpha(c.Cursor.Peek()) {
		savedPos := c.Cursor.pos
		if name, ok := c.Cursor.ParseIdentifier(); ok {
			if _, ok := primitiveTagBySpelling(name); ok && name != "void" {
				suffix = name
			} else {
				c.Cursor.Seek(savedPos)
			}
		}
	}

	tag := TagI32
	if isFloat {
		tag = TagF64
	}
	if suffix != "" {
		tag, _ = primitiveTagBySpelling(suffix)
	}
	return literalValue(tag, text)
}

func literalValue(tag Tag, text string) (Value, error) {
	switch tag.Base() {
	case TagF32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, ErrSyntax
		}
		return ValueF32(float32(f)), nil
	case TagF64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, ErrSyntax
		}
		return ValueF64(f), nil
	default:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Value{}, ErrSyntax
		}
		switch tag.Base() {
		case TagI8:
			return ValueI8(int8(u)), nil
		case TagU8:
			return ValueU8(uint8(u)), nil
		case TagI16:
			return ValueI16(int16(u)), nil
		case TagU16:
			return ValueU16(uint16(u)), nil
		case TagI32:
			return ValueI32(int32(u)), nil
		case TagU32:
			return ValueU32(uint32(u)), nil
		case TagI64:
			return ValueI64(int64(u)), nil
		case TagU64:
			return ValueU64(u), nil
		default:
			return Value{}, ErrTypeMismatch
		}
	}
}

// evalIdentifierTerm handles every form that begins with an identifier:
// declarations ("var"/"let"/type-keyword name [= init]), struct and
// function literals, and a bare variable reference with its postfix
// chain (spec.md §4.5 classification feeding §4.6 dispatch).
func (c *Context) evalIdentifierTerm() (Value, error) {
	savedPos := c.Cursor.pos
	name, ok := c.Cursor.ParseIdentifier()
	if !ok {
		return Value{}, ErrSyntax
	}

	class := c.Classify(name)
	switch class.Kind {
	case ClassDeclareDynamic:
		return c.evalDeclaration(TagAcquire, true)
	case ClassDeclareAcquire:
		return c.evalDeclaration(TagAcquire, false)
	case ClassPrimitiveType:
		return c.evalTypePrefixed(class.Tag, nil)
	case ClassStructKeyword:
		return c.ParseStructDefinition()
	case ClassStructType:
		return c.evalTypePrefixed(TagStruct, class.Def)
	case ClassVariable:
		return c.evalVariableTerm(class.Index)
	default:
		c.Cursor.Seek(savedPos)
		c.Diagnostics.report(ErrUndefined, savedPos, name)
		return Value{}, ErrUndefined
	}
}

// evalTypePrefixed implements spec.md §4.6's "(" and "[" dispatch rules for
// last_result == Type(T): a type classification immediately followed by "("
// or "[" opens a function literal with that declared return type — no
// separate identifier in between ("void(i32 x) => {...}" is itself the
// literal, per scenario 3). Anything else is an ordinary variable
// declaration of that type. def is the resolved struct Definition when tag
// is TagStruct from a ClassStructType classification, nil for a primitive
// type.
func (c *Context) evalTypePrefixed(tag Tag, def *Definition) (Value, error) {
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() == '(' || c.Cursor.Peek() == '[' {
		return c.ParseFunctionLiteral(tag)
	}
	if def != nil {
		if c.Cursor.Peek() == '.' {
			// "X.field" / "X.method(...)": X is being read as an ordinary
			// STRUCT value for static field/method access (spec.md §4.9),
			// not used as a type prefix for a new declaration. baseIndex is
			// -1 since this Value isn't backed by a fresh stack cell of its
			// own — the definition already lives wherever "X" was declared.
			return c.evalSuffixes(Value{Tag: TagStruct, Ref: def}, -1)
		}
		return c.evalStructTypedDecl(def)
	}
	return c.evalDeclaration(tag, false)
}

// evalStructTypedDecl implements the STRUCT_INSTANCE-producing branch of
// spec.md §4.5's classify table: "typename identifier" where typename names
// a struct pushes a zero-filled instance span, not a single TagStruct
// reference cell. No source grammar in this language supplies an instance
// literal initializer, so a following "=" is a syntax error rather than
// silently falling back to a bare reference.
func (c *Context) evalStructTypedDecl(def *Definition) (Value, error) {
	c.Cursor.SkipSpaces()
	name, ok := c.Cursor.ParseIdentifier()
	if !ok {
		return Value{}, ErrSyntax
	}
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() == '=' && c.Cursor.PeekAt(1) != '=' {
		return Value{}, ErrSyntax
	}
	idx, err := c.Stack.PushStructInstance(def)
	if err != nil {
		return Value{}, err
	}
	if err := c.declareVariable(name, idx); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagStructInstance, Ref: def}, nil
}

// evalDeclaration implements "var"/"let"/<type> name [= init] (spec.md
// §4.3, §4.5): it parses the following identifier as the variable name,
// evaluates an optional initializer, and binds the name to a freshly
// pushed cell of the declared tag.
func (c *Context) evalDeclaration(declTag Tag, dynamic bool) (Value, error) {
	c.Cursor.SkipSpaces()
	name, ok := c.Cursor.ParseIdentifier()
	if !ok {
		return Value{}, ErrSyntax
	}
	c.Cursor.SkipSpaces()

	var init Value
	hasInit := false
	owned := false
	if c.Cursor.Peek() == '=' && c.Cursor.PeekAt(1) != '=' {
		c.Cursor.Advance()
		topBefore := c.Stack.Top()
		v, err := c.EvalExpression()
		if err != nil {
			return Value{}, err
		}
		if c.Stack.Top() > topBefore {
			// The initializer already left its own value sitting on the
			// stack (a call result — call.go's protocol always leaves
			// exactly one result cell behind). Lift it off instead of
			// letting the Push below duplicate it into an orphaned cell
			// that no scope entry ever points at and no truncation ever
			// reaches again.
			v, _, err = c.Stack.take()
			if err != nil {
				return Value{}, err
			}
			owned = true
		}
		init, hasInit = v, true
	}

	var resolved Value
	switch {
	case hasInit && dynamic:
		resolved = Value{Tag: init.Tag.withDynamic(), Bits: init.Bits, Ref: init.Ref}
	case hasInit && declTag == TagAcquire:
		resolved = init
	case hasInit:
		if !declTag.Assignable(init.Tag) {
			return Value{}, ErrTypeMismatch
		}
		resolved = Value{Tag: declTag, Bits: init.Bits, Ref: init.Ref}
	case dynamic:
		resolved = Value{Tag: TagAcquire.withDynamic()}
	default:
		resolved = Value{Tag: declTag}
	}

	var idx int
	var err error
	if owned {
		idx, err = c.Stack.PushOwned(resolved)
	} else {
		idx, err = c.Stack.Push(resolved)
	}
	if err != nil {
		return Value{}, err
	}
	if err := c.declareVariable(name, idx); err != nil {
		return Value{}, err
	}
	return resolved, nil
}

// evalVariableTerm resolves a bare variable reference, then handles any
// trailing "." field access or "(" call suffix chained onto it. A
// STRUCT_INSTANCE-typed variable spans more than one cell and has no
// single-cell Value to read directly; evalSuffixes only needs its tag and
// base index to dispatch a field-access suffix (spec.md §4.9), so that case
// is handled without going through Stack.ValueAt.
func (c *Context) evalVariableTerm(index int) (Value, error) {
	view, err := c.Stack.Get(index)
	if err != nil {
		return Value{}, err
	}
	if view.Span != 1 {
		return c.evalSuffixes(Value{Tag: view.Tag}, view.Base)
	}
	v, err := c.Stack.ValueAt(index)
	if err != nil {
		return Value{}, err
	}
	return c.evalSuffixes(v, index)
}

// evalSuffixes implements postfix "." field access and "(" calls,
// left-to-right, on an already-resolved base value (spec.md §4.9, §4.11).
// baseIndex is the stack index the value was read from, needed for field
// access; it is -1 once the chain has produced a value no longer backed
// by a single stack cell (e.g. a call result or a parenthesized
// sub-expression), at which point a further "." is a type error.
func (c *Context) evalSuffixes(v Value, baseIndex int) (Value, error) {
	for {
		c.Cursor.SkipSpaces()
		switch c.Cursor.Peek() {
		case '.':
			c.Cursor.Advance()
			c.Cursor.SkipSpaces()
			field, ok := c.Cursor.ParseIdentifier()
			if !ok {
				return Value{}, ErrSyntax
			}
			var next Value
			var err error
			switch v.Tag.Base() {
			case TagStruct:
				def := v.AsDefinition()
				if def == nil {
					return Value{}, ErrTypeMismatch
				}
				next, err = c.GetStaticField(def, field)
			case TagStructInstance:
				if baseIndex < 0 {
					return Value{}, ErrTypeMismatch
				}
				next, err = c.GetField(baseIndex, field)
			case TagObject:
				next, err = c.GetObjectField(v, field)
			default:
				err = ErrTypeMismatch
			}
			if err != nil {
				return Value{}, err
			}
			v = next
			baseIndex = -1
		case '(':
			c.Cursor.Advance()
			result, err := c.evalCallArgs(v)
			if err != nil {
				return Value{}, err
			}
			v = result
			baseIndex = -1
		default:
			return v, nil
		}
	}
}

// evalCallArgs parses a comma-separated argument list up to the matching
// ')' (already past the '('), pushing each argument's value in order
// before dispatching through Invoke (spec.md §4.11).
func (c *Context) evalCallArgs(callee Value) (Value, error) {
	argBase := c.Stack.Top()
	argCount := 0
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() != ')' {
		for {
			topBefore := c.Stack.Top()
			v, err := c.EvalExpression()
			if err != nil {
				return Value{}, err
			}
			owned := false
			if c.Stack.Top() > topBefore {
				// This argument expression was itself a call (or anything
				// else that leaves its result sitting on the stack); lift
				// it off so the Push below doesn't leave a stray cell
				// between this argument and the next one, which would
				// throw off every later argument's argBase+i indexing.
				v, _, err = c.Stack.take()
				if err != nil {
					return Value{}, err
				}
				owned = true
			}
			if owned {
				if _, err := c.Stack.PushOwned(v); err != nil {
					return Value{}, err
				}
			} else if _, err := c.Stack.Push(v); err != nil {
				return Value{}, err
			}
			argCount++
			c.Cursor.SkipSpaces()
			if c.Cursor.Peek() == ',' {
				c.Cursor.Advance()
				continue
			}
			break
		}
	}
	c.Cursor.SkipSpaces()
	if c.Cursor.Peek() != ')' {
		return Value{}, ErrSyntax
	}
	c.Cursor.Advance()
	return c.Invoke(callee, argBase, argCount)
}
