package interpreter

// scopeEntry binds a name to the stack cell index where its storage
// begins (spec.md §3: "A variable's storage lives on the evaluation
// stack, not inside the scope record").
type scopeEntry struct {
	name  string
	index int
}

// Scope is one bracketed lexical level: a small ordered list of bindings,
// searched linearly (spec.md §4.3).
type Scope struct {
	entries []scopeEntry
}

func (s *Scope) find(name string) (int, bool) {
	for _, e := range s.entries {
		if e.name == name {
			return e.index, true
		}
	}
	return 0, false
}

// ScopeTable is the stack of local scopes plus the distinguished global
// scope searched after a local lookup failure (spec.md §3/§4.3). The local
// stack has no fixed depth limit: PushScope always appends.
type ScopeTable struct {
	global Scope
	locals []Scope
}

func NewScopeTable() *ScopeTable {
	return &ScopeTable{}
}

// PushScope brackets a new lexical level.
func (t *ScopeTable) PushScope() {
	t.locals = append(t.locals, Scope{})
}

// PopScope closes the innermost lexical level. It does not release any
// variable storage — that is the stack truncation's job at the block
// boundary (spec.md §5: "popping a scope by itself does not release
// variables").
func (t *ScopeTable) PopScope() {
	if len(t.locals) == 0 {
		return
	}
	t.locals = t.locals[:len(t.locals)-1]
}

func (t *ScopeTable) current() *Scope {
	if len(t.locals) == 0 {
		return &t.global
	}
	return &t.locals[len(t.locals)-1]
}

// Add binds name to index in the current scope (the global scope if no
// local scope is open). Redefining a name already bound in that same
// scope is an error (spec.md §4.3 "Redefined").
func (t *ScopeTable) Add(name string, index int) error {
	cur := t.current()
	if _, found := cur.find(name); found {
		return ErrRedefined
	}
	cur.entries = append(cur.entries, scopeEntry{name: name, index: index})
	return nil
}

// AddGlobal binds name directly into the global scope regardless of any
// open local scope — used by the host to seed native functions before
// Run begins (spec.md §4.3, §6).
func (t *ScopeTable) AddGlobal(name string, index int) error {
	if _, found := t.global.find(name); found {
		return ErrRedefined
	}
	t.global.entries = append(t.global.entries, scopeEntry{name: name, index: index})
	return nil
}

// Lookup resolves name in the innermost in-scope definition, searching
// outward through every open local scope before falling through to
// globals (spec.md invariant 3). A block nested inside a call's parameter
// scope must still see the parameters, so this walks the whole open
// chain rather than stopping at the innermost scope.
func (t *ScopeTable) Lookup(name string) (int, bool) {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if idx, ok := t.locals[i].find(name); ok {
			return idx, true
		}
	}
	return t.global.find(name)
}

// Depth reports the number of open local scopes, for diagnostics/tests.
func (t *ScopeTable) Depth() int { return len(t.locals) }
