package builtins

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/fastscript-lang/fastscript/interpreter"
)

// TestAddBuiltin_Success isolates addBuiltin's Frame usage with a mock
// instead of a real Context, the way the teacher isolates vm.Processor
// callers from a real EVM (ground: go/integration_test/interpreter/
// revision_test.go's gomock.Controller + generated mock usage).
func TestAddBuiltin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	frame := interpreter.NewMockFrame(ctrl)

	gomock.InOrder(
		frame.EXPECT().Pop().Return(interpreter.ValueI32(5), nil),
		frame.EXPECT().Pop().Return(interpreter.ValueI32(7), nil),
		frame.EXPECT().Push(interpreter.ValueI32(12)).Return(nil),
	)

	if err := addBuiltin(frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestAddBuiltin_TypeMismatch verifies a non-i32 operand is diagnosed, not
// propagated as a Go error, matching the native-call convention every other
// builtin follows (spec.md §7: type-mismatch errors are reported, not
// unwound).
func TestAddBuiltin_TypeMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	frame := interpreter.NewMockFrame(ctrl)

	gomock.InOrder(
		frame.EXPECT().Pop().Return(interpreter.ValueF64(1.5), nil),
		frame.EXPECT().Pop().Return(interpreter.ValueI32(1), nil),
		frame.EXPECT().Diagnose(interpreter.ErrTypeMismatch, gomock.Any()),
		frame.EXPECT().Push(interpreter.Value{Tag: interpreter.TagVoid}).Return(nil),
	)

	if err := addBuiltin(frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
