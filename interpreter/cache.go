package interpreter

import (
	"golang.org/x/crypto/sha3"

	lru "github.com/hashicorp/golang-lru/v2"
)

// layoutCacheSize bounds the number of distinct struct-literal source spans
// whose parsed field layout is memoized. Re-evaluating the same struct
// literal text (e.g. one written inside a loop body or a function called
// repeatedly) is common in a tree-walking interpreter with no separate
// compile pass, and re-scanning the field list every time is pure waste
// once the layout is known.
const layoutCacheSize = 256

// layoutKey is a cache key over a struct literal's raw source span. A
// struct literal's byte-for-byte text fully determines the layout its
// parser below would produce, so hashing the span is sound: two spans
// with the same bytes always deserve the same cached layout.
type layoutKey [32]byte

func hashLayoutSource(src string) layoutKey {
	return sha3.Sum256([]byte(src))
}

// layout is the cached result of parsing a struct literal's field list
// (spec.md §4.8), reusable by every subsequent NewDefinition for the same
// source span.
type layout struct {
	instanceFields []Field
	instanceSize   int
	staticFields   []Field
	staticSize     int
	needsDestruct  bool
	methods        []methodLayout
}

// methodLayout is a static method field's function shape, recorded relative
// to the struct literal's own span so it can be turned into an absolute
// FunctionDef once ParseStructDefinition knows where the span starts in the
// real source (spec.md §4.8's static-method field form).
type methodLayout struct {
	Field        Field
	Bound        []string
	Params       []FunctionParam
	ReturnTag    Tag
	RelBodyStart int
	RelBodyEnd   int
	IsBlockBody  bool
}

// layoutCache memoizes struct.go's field-list parse across repeated
// evaluations of the same struct literal text, the way the teacher's code
// cache (ground: go/vm/lfvm's code-hash keyed LRU) memoizes a repeated
// analysis pass.
type layoutCache struct {
	lru *lru.Cache[layoutKey, layout]
}

func newLayoutCache() *layoutCache {
	c, err := lru.New[layoutKey, layout](layoutCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// layoutCacheSize never is.
		panic(err)
	}
	return &layoutCache{lru: c}
}

func (c *layoutCache) get(src string) (layout, bool) {
	return c.lru.Get(hashLayoutSource(src))
}

func (c *layoutCache) put(src string, l layout) {
	c.lru.Add(hashLayoutSource(src), l)
}
