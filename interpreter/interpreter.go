package interpreter

import "sync"

// Context is the whole of a single script run's mutable state: the typed
// value stack, the lexical scope table, the source cursor, accumulated
// diagnostics, and the auxiliary tables (parsed function literals, struct
// layout cache, registered native functions) the fused parse/eval loop
// consults as it goes (spec.md §3 "Context").
type Context struct {
	Stack       *Stack
	Scopes      *ScopeTable
	Cursor      *Cursor
	Diagnostics Diagnostics

	layouts   *layoutCache
	functions []FunctionDef
	natives   []NativeFunc

	// varWatermark is spec.md §4.3/§4.7's "stack_variables": the highest
	// stack cell owned by a declared variable in the current block. It
	// only ever advances through declareVariable, never by a bare
	// statement's own Top() — Run and ExecuteBlock truncate back to this
	// value at every statement boundary, which clears expression scratch
	// while leaving declared variables' cells in place.
	varWatermark int

	// Trace, if set, is called once per top-level statement boundary —
	// the same lightweight hook the teacher's interpreters expose for a
	// --trace CLI flag (ground: go/vm/lfvm's per-opcode logger), generalized
	// here to "per statement" since this interpreter has no opcode stream.
	Trace func(pos int, result Value)
}

// contextPool recycles Contexts across runs the way the teacher recycles
// its interpreter scratch state between contract invocations (ground:
// go/interpreter/lfvm's sync.Pool of reusable stacks) — AcquireContext
// resets every field but the layout cache (see reset) before handing one
// out, so returning one to the pool never leaks a prior run's state into
// the next.
var contextPool = sync.Pool{
	New: func() any { return newContext() },
}

func newContext() *Context {
	return &Context{
		Stack:   NewStack(),
		Scopes:  NewScopeTable(),
		layouts: newLayoutCache(),
	}
}

// NewContext returns a Context ready for RegisterNative/AddGlobal calls
// followed by Run. Callers that run many short scripts back-to-back
// should prefer AcquireContext/Release to reuse allocations.
func NewContext() *Context { return newContext() }

// AcquireContext draws a recycled Context from the pool (or allocates a
// new one), already reset and ready for Run.
func AcquireContext() *Context {
	c := contextPool.Get().(*Context)
	c.reset()
	return c
}

// Release returns c to the pool. c must not be used again afterward.
func Release(c *Context) { contextPool.Put(c) }

func (c *Context) reset() {
	*c.Stack = *NewStack()
	c.Scopes = NewScopeTable()
	c.Cursor = nil
	c.Diagnostics = nil
	c.functions = nil
	c.natives = nil
	c.Trace = nil
	c.varWatermark = 0
	// layouts is intentionally NOT reset: struct literal text is immutable
	// across runs sharing a Context, so a warm layout cache is a pure win.
}

// Run evaluates source as a top-level sequence of statements (the same
// statement loop block.go uses for a brace-delimited block, with
// len(source) standing in for the closing brace) and returns whatever
// diagnostics accumulated. Per spec.md §7, Run never returns a Go error
// for a script-level failure — diagnostics are the side channel; only a
// host misuse (e.g. a native panicking) would surface any other way.
func (c *Context) Run(source string) Diagnostics {
	c.Cursor = NewCursor(source)
	c.varWatermark = c.Stack.Top()
	for {
		c.Cursor.SkipSpaces()
		if c.Cursor.Eof() {
			break
		}
		if c.Cursor.Peek() == ';' {
			// An empty statement is a no-op.
			c.Cursor.Advance()
			continue
		}
		pos := c.Cursor.Pos()
		v, err := c.EvalExpression()
		if err != nil {
			if ce, ok := err.(ConstError); ok {
				c.Diagnostics.report(ce, pos, "")
			} else {
				c.Diagnostics.report(ErrSyntax, pos, err.Error())
			}
			// Resynchronize at the next statement boundary so one bad
			// statement does not cascade into spurious downstream errors.
			c.skipToSemicolon()
			c.Stack.Truncate(c.varWatermark)
			continue
		}
		if c.Trace != nil {
			c.Trace(pos, v)
		}
		c.Cursor.SkipSpaces()
		if c.Cursor.Peek() == ';' {
			c.Cursor.Advance()
		}
		// Truncating to the declared-variable watermark rather than to
		// this statement's own pre-evaluation Top() is what lets a
		// declaration survive past its own statement: if this statement
		// just declared something, declareVariable already advanced
		// varWatermark past it before we get here.
		c.Stack.Truncate(c.varWatermark)
	}
	return c.Diagnostics
}

func (c *Context) skipToSemicolon() {
	for !c.Cursor.Eof() {
		b := c.Cursor.Advance()
		if b == ';' {
			return
		}
	}
}

// declareVariable binds name to idx in the current scope and advances
// varWatermark to cover the cell(s) just pushed for it (spec.md §4.3's
// "stack_variables... advanced" on declaration), so the next
// statement-boundary truncation in Run or ExecuteBlock preserves this
// variable instead of discarding it as scratch.
func (c *Context) declareVariable(name string, idx int) error {
	if err := c.Scopes.Add(name, idx); err != nil {
		return err
	}
	if top := c.Stack.Top(); top > c.varWatermark {
		c.varWatermark = top
	}
	return nil
}
