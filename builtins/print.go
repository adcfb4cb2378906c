package builtins

import (
	"fmt"

	"github.com/fastscript-lang/fastscript/interpreter"
)

func init() {
	Register("print", printBuiltin)
}

// printBuiltin implements spec.md §6's "print": it pops exactly one
// value, writes its tag-appropriate textual form, and pushes TagVoid.
func printBuiltin(f interpreter.Frame) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	fmt.Println(formatValue(v))
	return f.Push(interpreter.Value{Tag: interpreter.TagVoid})
}

func formatValue(v interpreter.Value) string {
	switch v.Tag.Base() {
	case interpreter.TagI8, interpreter.TagI16, interpreter.TagI32, interpreter.TagI64:
		return fmt.Sprintf("%d", v.SignedInt64())
	case interpreter.TagU8, interpreter.TagU16, interpreter.TagU32:
		return fmt.Sprintf("%d", v.AsU32())
	case interpreter.TagU64:
		return fmt.Sprintf("%d", v.AsU64())
	case interpreter.TagF32:
		return fmt.Sprintf("%g", v.AsF32())
	case interpreter.TagF64:
		return fmt.Sprintf("%g", v.AsF64())
	case interpreter.TagVoid:
		return "void"
	default:
		return v.Tag.String()
	}
}
