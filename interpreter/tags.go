package interpreter

import "fmt"

// Tag identifies the kind of value occupying a stack cell. The high bit
// (dynamicFlag) is not itself a tag value; it is a modifier set on a cell
// declared with "var" that keeps accepting any subsequent incoming tag on
// assignment (see Stack.Set and Tag.Assignable).
type Tag uint8

const dynamicFlag Tag = 0x80

const (
	// TagAcquire is the placeholder used for a "let"-declared slot: it is
	// replaced outright by the tag of the first value ever assigned to it.
	TagAcquire Tag = iota
	TagI8
	TagU8
	TagI16
	TagU16
	TagI32
	TagU32
	TagI64
	TagU64
	TagF32
	TagF64
	TagVoid
	TagPtr
	TagNativeFunction
	TagFunction
	TagStruct
	TagStructInstance
	TagStructEnd
	TagObject
)

// Base strips the dynamic flag, returning the underlying tag a "var" cell
// currently holds (or TagAcquire if nothing has been assigned yet).
func (t Tag) Base() Tag { return t &^ dynamicFlag }

// IsDynamic reports whether t carries the "var" flag.
func (t Tag) IsDynamic() bool { return t&dynamicFlag != 0 }

func (t Tag) withDynamic() Tag { return t.Base() | dynamicFlag }

// Assignable implements the §4.1 rule: target accepts source iff target is
// dynamic, target is the acquire placeholder, or the tags are identical.
// Target is always the receiver, matching spec.md §9(c)'s "target accepts
// source" convention chosen to resolve the original's inconsistent argument
// order.
func (t Tag) Assignable(source Tag) bool {
	if t.IsDynamic() {
		return true
	}
	if t == TagAcquire {
		return true
	}
	return t == source
}

// byteSize returns the size in bytes of a single instance of the base tag,
// used for instance-field layout (§4.8) and primitive literal storage.
// Void and the acquire placeholder return 0; every other tag, including
// reference-carrying and span-sentinel tags, returns 8 (one cell).
func (t Tag) byteSize() int {
	switch t.Base() {
	case TagI8, TagU8:
		return 1
	case TagI16, TagU16:
		return 2
	case TagI32, TagU32, TagF32:
		return 4
	case TagI64, TagU64, TagF64, TagPtr, TagNativeFunction, TagFunction, TagStruct, TagObject:
		return 8
	case TagVoid, TagAcquire:
		return 0
	default:
		return 8
	}
}

// cellSpan returns the number of 8-byte cells a freshly declared variable of
// this tag occupies on the stack. Aggregate instances are handled
// separately (see Stack.PushStructInstance): cellSpan is only meaningful
// for the tags a scope declaration can name directly.
func (t Tag) cellSpan() int {
	size := t.byteSize()
	if size == 0 {
		return 1
	}
	return (size + 7) / 8
}

// isRef reports whether a cell tagged t owns a retained arena reference
// that must be released on overwrite/pop (§4.1 "Destruction").
func (t Tag) isRef() bool {
	switch t.Base() {
	case TagStruct, TagObject, TagStructInstance:
		return true
	default:
		return false
	}
}

func (t Tag) String() string {
	names := [...]string{
		"acquire", "i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64",
		"f32", "f64", "void", "ptr", "native_function", "function",
		"struct", "struct_instance", "struct_end", "object",
	}
	base := t.Base()
	name := "tag(?)"
	if int(base) < len(names) {
		name = names[base]
	}
	if t.IsDynamic() {
		return fmt.Sprintf("dynamic<%s>", name)
	}
	return name
}

// primitiveTagBySpelling classifies the primitive type keywords of §4.5.
func primitiveTagBySpelling(s string) (Tag, bool) {
	switch s {
	case "i8":
		return TagI8, true
	case "u8":
		return TagU8, true
	case "i16":
		return TagI16, true
	case "u16":
		return TagU16, true
	case "i32":
		return TagI32, true
	case "u32":
		return TagU32, true
	case "i64":
		return TagI64, true
	case "u64":
		return TagU64, true
	case "f32":
		return TagF32, true
	case "f64":
		return TagF64, true
	case "void":
		return TagVoid, true
	}
	return 0, false
}
