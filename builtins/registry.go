// Package builtins seeds an interpreter.Context with the native function
// globals spec.md §6 describes: "print" and "add". It follows the
// teacher's global-registry idiom (ground: go/vm/registry.go's
// map[string]T Register/Get pair) adapted to this language's "bind a name
// to a stack slot" global convention instead of a package-level map
// lookup at call time.
package builtins

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/fastscript-lang/fastscript/interpreter"
)

// Builtin is one native global: its name and the function implementing
// it.
type Builtin struct {
	Name string
	Func interpreter.NativeFunc
}

var registry = map[string]interpreter.NativeFunc{}

// Register adds a builtin to the package-level registry, the way the
// teacher's vm/registry.Register does for interpreter implementations
// (ground: go/vm/registry.go). init() functions in print.go/add.go call
// this so new builtins are added by dropping in a file, not editing
// Install.
func Register(name string, fn interpreter.NativeFunc) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("builtins: %q already registered", name))
	}
	registry[name] = fn
}

// Names reports every registered builtin name, sorted for deterministic
// iteration.
func Names() []string {
	names := maps.Keys(registry)
	sort.Strings(names)
	return names
}

// Install seeds ctx with every registered builtin as a global: each
// native function is given a stack slot holding its TagNativeFunction
// value, bound into the global scope under its name (spec.md §6).
func Install(ctx *interpreter.Context) error {
	for name, fn := range registry {
		val := ctx.RegisterNative(fn)
		idx, err := ctx.Stack.Push(val)
		if err != nil {
			return err
		}
		if err := ctx.Scopes.AddGlobal(name, idx); err != nil {
			return err
		}
	}
	return nil
}
