package builtins

import "github.com/fastscript-lang/fastscript/interpreter"

func init() {
	Register("add", addBuiltin)
}

// addBuiltin implements spec.md §6's "add": pops the top two values (top is
// the second argument, the one below it the first) and, if both are i32,
// pushes their sum. Any other tag combination is a diagnostic, not a panic
// — a native function never crashes the host over a caller's type error.
func addBuiltin(f interpreter.Frame) error {
	b, err := f.Pop()
	if err != nil {
		return err
	}
	a, err := f.Pop()
	if err != nil {
		return err
	}
	if a.Tag.Base() != interpreter.TagI32 || b.Tag.Base() != interpreter.TagI32 {
		f.Diagnose(interpreter.ErrTypeMismatch, "add: both arguments must be i32")
		return f.Push(interpreter.Value{Tag: interpreter.TagVoid})
	}
	return f.Push(interpreter.ValueI32(a.AsI32() + b.AsI32()))
}
