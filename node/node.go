// Package node defines the in-memory model for translation resource trees.
//
// A tree is an insertion-ordered mapping from keys to values, where a value
// is either a string leaf, a non-string scalar (number, boolean, null), a
// nested tree, or an opaque value (arrays and any other shape a source
// format produces). Key order from the source document is preserved so that
// converted files diff cleanly against their originals.
//
// Numbers carry their source literal (e.g. "3.10") rather than a parsed
// float, so serializing a tree never changes numeric precision.
package node

// Kind discriminates the variants of a Node.
type Kind int

const (
	// KindString is a translatable string leaf.
	KindString Kind = iota
	// KindNumber is a numeric scalar, stored as its source literal.
	KindNumber
	// KindBool is a boolean scalar.
	KindBool
	// KindNull is an explicit null value.
	KindNull
	// KindOpaque is a value the converter passes through unmodified
	// (arrays, or anything else outside the mapping/scalar model).
	KindOpaque
	// KindTree is a nested mapping.
	KindTree
)

// Node is one value in a translation tree.
type Node struct {
	Kind Kind

	// Str holds the value for KindString.
	Str string
	// Num holds the source literal for KindNumber.
	Num string
	// Bool holds the value for KindBool.
	Bool bool
	// Opaque holds the format-specific payload for KindOpaque
	// (json.RawMessage for JSON sources, *yaml.Node for YAML sources).
	Opaque any
	// Tree holds the nested mapping for KindTree.
	Tree *Tree
}

// String returns a string leaf node.
func String(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Number returns a numeric node carrying the given source literal.
func Number(literal string) *Node { return &Node{Kind: KindNumber, Num: literal} }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }

// Null returns a null node.
func Null() *Node { return &Node{Kind: KindNull} }

// Opaque returns an opaque node wrapping a format-specific payload.
func Opaque(v any) *Node { return &Node{Kind: KindOpaque, Opaque: v} }

// TreeNode wraps a Tree in a Node.
func TreeNode(t *Tree) *Node { return &Node{Kind: KindTree, Tree: t} }

// ---------------------------------------------------------------------------
// Ordered tree
// ---------------------------------------------------------------------------

// Tree is an insertion-ordered mapping from string keys to nodes.
type Tree struct {
	// keys stores the key order.
	keys []string
	// values maps key → node.
	values map[string]*Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{values: make(map[string]*Node)}
}

// Len returns the number of keys.
func (t *Tree) Len() int { return len(t.keys) }

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (t *Tree) Keys() []string { return t.keys }

// Get returns the node for key, or (nil, false) if absent.
func (t *Tree) Get(key string) (*Node, bool) {
	n, ok := t.values[key]
	return n, ok
}

// Has reports whether key is present.
func (t *Tree) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Set inserts or replaces the value for key. Replacing an existing key keeps
// its original position in the key order; a new key is appended at the end.
func (t *Tree) Set(key string, n *Node) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = n
}
