package interpreter_test

import (
	"io"
	"os"
	"testing"

	"github.com/fastscript-lang/fastscript/builtins"
	"github.com/fastscript-lang/fastscript/interpreter"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it. Ground: go/interpreter/lfvm/instruction_logger_
// test.go's os.Pipe-based redirect, the teacher's own pattern for asserting
// on a native's printed output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("close pipe writer: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return string(out)
}

func runScript(t *testing.T, source string) (string, interpreter.Diagnostics) {
	t.Helper()
	rt := interpreter.NewContext()
	if err := builtins.Install(rt); err != nil {
		t.Fatalf("builtins.Install: %v", err)
	}
	var diags interpreter.Diagnostics
	out := captureStdout(t, func() {
		diags = rt.Run(source)
	})
	return out, diags
}

// TestScenario1 covers spec.md §8 scenario 1: "var a = 2; print(a);" emits "2".
func TestScenario1(t *testing.T) {
	out, diags := runScript(t, `var a = 2; print(a);`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if out != "2\n" {
		t.Fatalf("want %q, got %q", "2\n", out)
	}
}

// TestScenario2 covers scenario 2: "var a = 2; a = add(a, 10); print(a);"
// emits "12".
func TestScenario2(t *testing.T) {
	out, diags := runScript(t, `var a = 2; a = add(a, 10); print(a);`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if out != "12\n" {
		t.Fatalf("want %q, got %q", "12\n", out)
	}
}

// TestScenario3 covers scenario 3: a void-returning function literal whose
// body mutates its own parameter and prints it; the call's own result is
// never observable. Emits "12".
func TestScenario3(t *testing.T) {
	out, diags := runScript(t, `var b = void(i32 x) => { x = add(x, 5); print(x); }; b(7);`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if out != "12\n" {
		t.Fatalf("want %q, got %q", "12\n", out)
	}
}

// TestScenario4 covers scenario 4: two acquire-typed locals fed through
// "add" and printed directly from the call result. Emits "5".
func TestScenario4(t *testing.T) {
	out, diags := runScript(t, `let a = 2; let b = 3; print(add(a, b));`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if out != "5\n" {
		t.Fatalf("want %q, got %q", "5\n", out)
	}
}

// TestScenario5 covers scenario 5: a struct literal's static method called
// through its definition, demonstrating the static-method-field wiring.
// Emits "17".
func TestScenario5(t *testing.T) {
	out, diags := runScript(t, `let X = struct { i32 new() => { 17 } }; let c = X.new(); print(c);`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if out != "17\n" {
		t.Fatalf("want %q, got %q", "17\n", out)
	}
}

// TestScenario6 covers scenario 6: assigning a FUNCTION-tagged value into a
// statically i32-typed slot must report TypeMismatch. The test checks that
// the TypeMismatch diagnostic is reported.
func TestScenario6(t *testing.T) {
	_, diags := runScript(t, `var b = void() => { 1 }; i32 c = b;`)
	if len(diags) == 0 {
		t.Fatalf("expected a TypeMismatch diagnostic, got none")
	}
	found := false
	for _, d := range diags {
		if d.Err == interpreter.ErrTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrTypeMismatch among diagnostics, got %v", diags)
	}
}
