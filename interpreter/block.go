package interpreter

// ExecuteBlock implements spec.md §4.7's statement loop: the cursor is
// positioned just past the block's opening '{'. Evaluate one
// expression/declaration at a time, truncating the stack back to the
// variable watermark (c.varWatermark) after each one terminated by ';'
// (a bare ';' is an empty statement and does nothing), until the closing '}' is
// reached directly (spec.md §4.7 describes termination this way, not via a
// pre-computed end offset). A trailing statement with no terminating ';'
// immediately before the '}' is not truncated — its value becomes the
// block's result and is reported to the caller instead of being destructed,
// the same relocation idiom §4.11 already uses for a call's return value (a
// function body is just a block evaluated by this same executor). A block
// whose last statement ends in ';' returns hasResult=false. Either way the
// stack is truncated back to the entry watermark on exit, satisfying §8
// property 2 ("after every block, top equals entry top"); a trailing result
// is handed back as a Value, not left in a stack cell.
func (c *Context) ExecuteBlock() (Value, bool, error) {
	c.Scopes.PushScope()
	defer c.Scopes.PopScope()

	// entryWatermark is this block's own "stack_variables" at entry
	// (spec.md §4.7): every statement-boundary truncation inside this block
	// truncates down to c.varWatermark instead, which only ever advances
	// as declarations inside this block run (declareVariable), never
	// resets to it — that is what lets "var x = 1;" survive past its own
	// statement into the next one. Exiting restores both top and
	// varWatermark to entryWatermark, releasing every local this block
	// declared, exactly as §4.7 specifies.
	entryWatermark := c.varWatermark
	exit := func(v Value, hasResult bool, err error) (Value, bool, error) {
		c.Stack.Truncate(entryWatermark)
		c.varWatermark = entryWatermark
		return v, hasResult, err
	}

	for {
		c.Cursor.SkipSpaces()
		if c.Cursor.Eof() {
			return exit(Value{}, false, ErrSyntax)
		}
		if c.Cursor.Peek() == '}' {
			c.Cursor.Advance()
			return exit(Value{}, false, nil)
		}
		if c.Cursor.Peek() == ';' {
			// An empty statement is a no-op.
			c.Cursor.Advance()
			continue
		}

		// iterTop is only used to detect whether *this* statement's own
		// evaluation grew the stack (the trailing-result check below) — it
		// is never what we truncate back to.
		iterTop := c.Stack.Top()

		v, err := c.EvalExpression()
		if err != nil {
			return exit(Value{}, false, err)
		}

		c.Cursor.SkipSpaces()
		if c.Cursor.Peek() == ';' {
			c.Cursor.Advance()
			c.Stack.Truncate(c.varWatermark)
			continue
		}

		c.Cursor.SkipSpaces()
		if c.Cursor.Peek() != '}' {
			return exit(Value{}, false, ErrSyntax)
		}
		c.Cursor.Advance()

		// No semicolon before '}': the value just evaluated is the block's
		// result. Not every expression form leaves its value sitting in a
		// stack cell (arithmetic and a bare variable reference are pure
		// Go-level Values; a declaration or a call result also occupies a
		// cell) — only reconcile against the stack when this
		// statement's evaluation grew it, lifting the cell off with take()
		// so its reference moves to v without also being released here.
		if c.Stack.Top() > iterTop {
			taken, _, err := c.Stack.take()
			if err != nil {
				return exit(Value{}, false, err)
			}
			v = taken
		}
		return exit(v, true, nil)
	}
}
