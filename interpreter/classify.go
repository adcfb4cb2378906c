package interpreter

// ClassKind is the outcome of classifying one identifier token at the head
// of a statement or expression (spec.md §4.5).
type ClassKind int

const (
	// ClassUndefined: name does not resolve to a keyword or a scope entry.
	ClassUndefined ClassKind = iota
	// ClassDeclareDynamic: the "var" keyword — the next identifier declares
	// a DYNAMIC (ACQUIRE-then-anything) slot.
	ClassDeclareDynamic
	// ClassDeclareAcquire: the "let" keyword — the next identifier declares
	// an ACQUIRE slot fixed to the tag of its first assignment.
	ClassDeclareAcquire
	// ClassPrimitiveType: a primitive type keyword (i8.. f64, void) — the
	// next identifier declares a slot fixed to that tag.
	ClassPrimitiveType
	// ClassStructKeyword: the "struct" keyword, handled entirely by
	// struct.go's definition parser.
	ClassStructKeyword
	// ClassStructType: name resolves to a scope entry whose base tag is
	// TagStruct — using it as a type prefix declares a struct-typed
	// variable, yielding a STRUCT_INSTANCE slot backed by Def (spec.md
	// §4.5's classify table).
	ClassStructType
	// ClassVariable: name resolves to an ordinary scope entry.
	ClassVariable
)

// Classification is the result of classifying an identifier (spec.md
// §4.5): enough for the evaluator to decide, without looking the name up a
// second time, whether it is about to parse a declaration, a type prefix,
// or a plain variable reference.
type Classification struct {
	Kind  ClassKind
	Tag   Tag // valid for ClassPrimitiveType and ClassStructType
	Index int // stack index, valid for ClassVariable and ClassStructType
	Def   *Definition // valid for ClassStructType: the resolved struct definition
}

// Classify implements spec.md §4.5: the keywords "var", "let" and "struct"
// first, then primitive type names, then a scope lookup. It performs no
// side effects; the evaluator (eval.go) decides what to do with the result,
// including pushing a struct's Definition reference when the classification
// is used in declaration position.
func (c *Context) Classify(name string) Classification {
	switch name {
	case "var":
		return Classification{Kind: ClassDeclareDynamic}
	case "let":
		return Classification{Kind: ClassDeclareAcquire}
	case "struct":
		return Classification{Kind: ClassStructKeyword}
	}
	if tag, ok := primitiveTagBySpelling(name); ok {
		return Classification{Kind: ClassPrimitiveType, Tag: tag}
	}
	index, found := c.Scopes.Lookup(name)
	if !found {
		return Classification{Kind: ClassUndefined}
	}
	if v, err := c.Stack.ValueAt(index); err == nil && v.Tag.Base() == TagStruct {
		return Classification{Kind: ClassStructType, Tag: TagStruct, Index: index, Def: v.AsDefinition()}
	}
	return Classification{Kind: ClassVariable, Index: index}
}
