package interpreter

import (
	"fmt"
	"testing"

	"pgregory.net/rand"
)

// installAdd binds an i32 "add" native into ctx's global scope, behaving
// like builtins/add.go. This package's own tests cannot import builtins,
// which itself imports interpreter.
func installAdd(ctx *Context) error {
	add := func(f Frame) error {
		b, err := f.Pop()
		if err != nil {
			return err
		}
		a, err := f.Pop()
		if err != nil {
			return err
		}
		if a.Tag.Base() != TagI32 || b.Tag.Base() != TagI32 {
			f.Diagnose(ErrTypeMismatch, "add: both arguments must be i32")
			return f.Push(Value{Tag: TagVoid})
		}
		return f.Push(ValueI32(a.AsI32() + b.AsI32()))
	}
	idx, err := ctx.Stack.Push(ctx.RegisterNative(add))
	if err != nil {
		return err
	}
	return ctx.Scopes.AddGlobal("add", idx)
}

// propertyType pairs a primitive type's source spelling with the magnitude
// range a literal of that width can hold, so the generators below never
// produce a literal parseNumericLiteral/literalValue would reject.
type propertyType struct {
	spelling string
	signed   bool
	bound    int64 // exclusive upper bound on the magnitude generated
}

var propertyIntTypes = []propertyType{
	{"i8", true, 1 << 6},
	{"u8", false, 1 << 7},
	{"i16", true, 1 << 14},
	{"u16", false, 1 << 15},
	{"i32", true, 1 << 20},
	{"u32", false, 1 << 20},
	{"i64", true, 1 << 20},
	{"u64", false, 1 << 20},
}

func (p propertyType) literal(rnd *rand.Rand) (text string, value int64) {
	mag := rnd.Int63n(p.bound)
	if p.signed && rnd.Intn(2) == 0 {
		mag = -mag
	}
	if mag < 0 {
		return fmt.Sprintf("-%d%s", -mag, p.spelling), mag
	}
	return fmt.Sprintf("%d%s", mag, p.spelling), mag
}

// asInt64 reads back a declared variable's numeric value regardless of
// width/signedness, for comparing against the generator's int64 value.
func (p propertyType) asInt64(v Value) int64 {
	if p.signed {
		return v.SignedInt64()
	}
	return int64(v.AsU64())
}

// TestLaw_StaticAssignmentRoundTrip covers spec.md §8's "Assignment
// round-trip (static type)" law: declaring "T x = v;" and reading x back
// yields v exactly, for a spread of T and randomly generated v. Ground:
// go/ct/rlz/rules_test.go's rand.New(seed)-seeded table loop.
func TestLaw_StaticAssignmentRoundTrip(t *testing.T) {
	rnd := rand.New(0)
	for _, ty := range propertyIntTypes {
		for i := 0; i < 25; i++ {
			lit, value := ty.literal(rnd)
			source := fmt.Sprintf(`%s x = %s;`, ty.spelling, lit)
			ctx := NewContext()
			diags := ctx.Run(source)
			if len(diags) != 0 {
				t.Fatalf("%s: unexpected diagnostics: %v", source, diags)
			}
			idx, ok := ctx.Scopes.Lookup("x")
			if !ok {
				t.Fatalf("%s: x not found in scope", source)
			}
			got, err := ctx.Stack.ValueAt(idx)
			if err != nil {
				t.Fatalf("%s: ValueAt: %v", source, err)
			}
			if gotValue := ty.asInt64(got); gotValue != value {
				t.Fatalf("%s: x = %d, want %d", source, gotValue, value)
			}
		}
	}
}

// TestLaw_DynamicAssignmentRoundTrip covers the "Assignment round-trip
// (dynamic)" law: "var x = v; x = w;" always ends with x holding w, even
// when w's tag differs from v's — a dynamic slot accepts any tag on
// reassignment (tags.go's Assignable, spec.md §4.1).
func TestLaw_DynamicAssignmentRoundTrip(t *testing.T) {
	rnd := rand.New(1)
	for i := 0; i < 50; i++ {
		first := propertyIntTypes[rnd.Intn(len(propertyIntTypes))]
		second := propertyIntTypes[rnd.Intn(len(propertyIntTypes))]
		firstLit, _ := first.literal(rnd)
		secondLit, secondValue := second.literal(rnd)
		source := fmt.Sprintf(`var x = %s; x = %s;`, firstLit, secondLit)
		ctx := NewContext()
		diags := ctx.Run(source)
		if len(diags) != 0 {
			t.Fatalf("%s: unexpected diagnostics: %v", source, diags)
		}
		idx, ok := ctx.Scopes.Lookup("x")
		if !ok {
			t.Fatalf("%s: x not found in scope", source)
		}
		got, err := ctx.Stack.ValueAt(idx)
		if err != nil {
			t.Fatalf("%s: ValueAt: %v", source, err)
		}
		if gotValue := second.asInt64(got); gotValue != secondValue {
			t.Fatalf("%s: x = %d, want %d", source, gotValue, secondValue)
		}
	}
}

// TestLaw_StackBalance fuzzes the number and order of global declarations,
// some plain and some fed through "add" calls, then checks Stack.Top()
// lands exactly on the last declared variable's cell — a generalization,
// over random program shapes, of spec.md §8 invariant 1 ("after every
// statement, top equals the variable watermark") and the "pop symmetry"
// law: any unpaired push (an orphaned scratch cell the watermark fix in
// block.go/eval.go this pass eliminates) would show up here as extra
// residue above the last variable's slot.
func TestLaw_StackBalance(t *testing.T) {
	rnd := rand.New(2)
	i32 := propertyIntTypes[4]
	for trial := 0; trial < 20; trial++ {
		ctx := NewContext()
		if err := installAdd(ctx); err != nil {
			t.Fatalf("installAdd: %v", err)
		}

		var src string
		names := make([]string, 0, 8)
		steps := 3 + rnd.Intn(6)
		for i := 0; i < steps; i++ {
			name := fmt.Sprintf("v%d", i)
			if i >= 2 && rnd.Intn(2) == 0 {
				a, b := names[rnd.Intn(len(names))], names[rnd.Intn(len(names))]
				src += fmt.Sprintf("var %s = add(%s, %s); ", name, a, b)
			} else {
				lit, _ := i32.literal(rnd)
				src += fmt.Sprintf("var %s = %s; ", name, lit)
			}
			names = append(names, name)
		}

		diags := ctx.Run(src)
		if len(diags) != 0 {
			t.Fatalf("%s: unexpected diagnostics: %v", src, diags)
		}
		idx, ok := ctx.Scopes.Lookup(names[len(names)-1])
		if !ok {
			t.Fatalf("%s: last variable not found in scope", src)
		}
		if got, want := ctx.Stack.Top(), idx+1; got != want {
			t.Fatalf("%s: top = %d, want %d", src, got, want)
		}
	}
}

// TestLaw_RefBalance covers "Ref balance": for every retain of an aggregate
// definition there is a corresponding release by program end. Fuzzes the
// number of sibling blocks, each declaring and dropping one instance of the
// same struct, and checks the definition's reference count always settles
// back to exactly 1 (the global "X" slot's own holder) once every block has
// exited.
func TestLaw_RefBalance(t *testing.T) {
	rnd := rand.New(3)
	for trial := 0; trial < 15; trial++ {
		ctx := NewContext()

		blocks := 1 + rnd.Intn(5)
		src := `let X = struct { i32 a; }; `
		for i := 0; i < blocks; i++ {
			src += `{ X b; b.a = 1; }; `
		}

		diags := ctx.Run(src)
		if len(diags) != 0 {
			t.Fatalf("%s: unexpected diagnostics: %v", src, diags)
		}
		idx, ok := ctx.Scopes.Lookup("X")
		if !ok {
			t.Fatalf("%s: X not found in scope", src)
		}
		def, ok := ctx.Stack.DefinitionAt(idx)
		if !ok || def == nil {
			t.Fatalf("%s: X is not a struct definition", src)
		}
		if got, want := def.refCount(), 1; got != want {
			t.Fatalf("%s: definition ref count = %d, want %d after %d blocks", src, got, want, blocks)
		}
	}
}
