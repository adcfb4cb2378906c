package interpreter

// Cursor is the shared mutable position into an immutable source buffer
// (spec.md §4.4). It is monotonically non-decreasing except during a
// script function call, when the call protocol temporarily repositions it
// to the callee body and restores it on return (spec.md invariant 4).
type Cursor struct {
	src string
	pos int
}

func NewCursor(src string) *Cursor { return &Cursor{src: src} }

func (c *Cursor) Len() int   { return len(c.src) }
func (c *Cursor) Pos() int   { return c.pos }
func (c *Cursor) Eof() bool  { return c.pos >= len(c.src) }
func (c *Cursor) Seek(pos int) { c.pos = pos }

// Peek returns the byte at the cursor without advancing, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.Eof() {
		return 0
	}
	return c.src[c.pos]
}

// PeekAt returns the byte offset bytes ahead of the cursor, or 0 past EOF.
func (c *Cursor) PeekAt(offset int) byte {
	i := c.pos + offset
	if i < 0 || i >= len(c.src) {
		return 0
	}
	return c.src[i]
}

// Advance consumes and returns the byte at the cursor (0 at EOF).
func (c *Cursor) Advance() byte {
	if c.Eof() {
		return 0
	}
	b := c.src[c.pos]
	c.pos++
	return b
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

// SkipSpaces advances over whitespace and "//" line comments (the latter
// is spec.md §4.6's comment handling, folded in here since both are
// "things the evaluator skips before looking at the next meaningful
// character").
func (c *Cursor) SkipSpaces() {
	for !c.Eof() {
		b := c.Peek()
		if isSpace(b) {
			c.Advance()
			continue
		}
		if b == '/' && c.PeekAt(1) == '/' {
			for !c.Eof() && c.Peek() != '\n' {
				c.Advance()
			}
			continue
		}
		return
	}
}

// ScanBalanced consumes up to and including the next unmatched '}',
// counting nested '{'/'}' pairs, and returns the span between the cursor's
// current position (assumed to be just past an already-consumed opening
// brace) and the matching close, exclusive of the close itself. Used by
// struct.go and function.go to lift out a body's raw source text for
// layout-cache hashing and for later (possibly repeated) re-parsing.
func (c *Cursor) ScanBalanced() (string, error) {
	depth := 1
	start := c.pos
	for !c.Eof() {
		switch c.Peek() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				span := c.src[start:c.pos]
				c.Advance()
				return span, nil
			}
		}
		c.Advance()
	}
	return "", ErrSyntax
}

// ParseIdentifier scans [A-Za-z][A-Za-z0-9]* (spec.md §4.4/§6 grammar).
// It returns false without consuming anything if the cursor is not
// positioned at an identifier start.
func (c *Cursor) ParseIdentifier() (string, bool) {
	if !isAlpha(c.Peek()) {
		return "", false
	}
	start := c.pos
	c.Advance()
	for isAlnum(c.Peek()) {
		c.Advance()
	}
	return c.src[start:c.pos], true
}
