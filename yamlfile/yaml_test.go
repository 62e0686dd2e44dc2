package yamlfile

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/icukit/node"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func TestParse_Flat(t *testing.T) {
	data := []byte(`greeting: Hello
farewell: Goodbye
`)
	tree, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := []string{"greeting", "farewell"}
	if !reflect.DeepEqual(tree.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", tree.Keys(), want)
	}
	if n, _ := tree.Get("greeting"); n.Kind != node.KindString || n.Str != "Hello" {
		t.Errorf("greeting = %+v", n)
	}
}

func TestParse_Nested(t *testing.T) {
	data := []byte(`nav:
  home: Home
  about: About
footer:
  copyright: Copyright
`)
	tree, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	nav, ok := tree.Get("nav")
	if !ok || nav.Kind != node.KindTree {
		t.Fatalf("nav = %+v, want tree", nav)
	}
	if n, _ := nav.Tree.Get("about"); n.Str != "About" {
		t.Errorf("nav.about = %q", n.Str)
	}
}

func TestParse_ScalarKinds(t *testing.T) {
	data := []byte(`count: 42
ratio: 3.14
enabled: true
nothing: ~
label: Hello
quoted: "123"
`)
	tree, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if n, _ := tree.Get("count"); n.Kind != node.KindNumber || n.Num != "42" {
		t.Errorf("count = %+v", n)
	}
	if n, _ := tree.Get("ratio"); n.Kind != node.KindNumber || n.Num != "3.14" {
		t.Errorf("ratio = %+v", n)
	}
	if n, _ := tree.Get("enabled"); n.Kind != node.KindBool || !n.Bool {
		t.Errorf("enabled = %+v", n)
	}
	if n, _ := tree.Get("nothing"); n.Kind != node.KindNull {
		t.Errorf("nothing = %+v", n)
	}
	if n, _ := tree.Get("label"); n.Kind != node.KindString || n.Str != "Hello" {
		t.Errorf("label = %+v", n)
	}
	// A quoted numeric-looking scalar stays a string.
	if n, _ := tree.Get("quoted"); n.Kind != node.KindString || n.Str != "123" {
		t.Errorf("quoted = %+v", n)
	}
}

func TestParse_SequenceIsOpaque(t *testing.T) {
	data := []byte(`tags:
  - a
  - b
`)
	tree, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if n, _ := tree.Get("tags"); n.Kind != node.KindOpaque {
		t.Errorf("tags = %+v, want opaque", n)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	tree, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
}

func TestParse_RootMustBeMapping(t *testing.T) {
	if _, err := Parse([]byte("- a\n- b\n")); err == nil {
		t.Error("expected error for sequence root")
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

func TestMarshal_RoundTripStructure(t *testing.T) {
	data := []byte(`greeting: Hello
nav:
  home: Home
count: 42
ratio: 3.14
enabled: false
tags:
  - a
  - b
`)
	tree, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// Re-parse and compare shape and values.
	tree2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse error: %v\noutput:\n%s", err, out)
	}

	if !reflect.DeepEqual(tree2.Keys(), tree.Keys()) {
		t.Errorf("key order changed: %v vs %v", tree2.Keys(), tree.Keys())
	}
	if n, _ := tree2.Get("count"); n.Kind != node.KindNumber || n.Num != "42" {
		t.Errorf("count = %+v", n)
	}
	if n, _ := tree2.Get("ratio"); n.Kind != node.KindNumber || n.Num != "3.14" {
		t.Errorf("ratio = %+v", n)
	}
	if n, _ := tree2.Get("enabled"); n.Kind != node.KindBool || n.Bool {
		t.Errorf("enabled = %+v", n)
	}
	nav, _ := tree2.Get("nav")
	if nav.Kind != node.KindTree {
		t.Fatalf("nav = %+v", nav)
	}
	if n, _ := nav.Tree.Get("home"); n.Str != "Home" {
		t.Errorf("nav.home = %q", n.Str)
	}
	if n, _ := tree2.Get("tags"); n.Kind != node.KindOpaque {
		t.Errorf("tags = %+v", n)
	}
}

func TestMarshal_NumericLookingStringIsQuoted(t *testing.T) {
	tree := node.NewTree()
	tree.Set("code", node.String("123"))

	out, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	tree2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if n, _ := tree2.Get("code"); n.Kind != node.KindString || n.Str != "123" {
		t.Errorf("code = %+v, want string 123 (output: %s)", n, out)
	}
}

func TestMarshal_JSONOpaqueCrossFormat(t *testing.T) {
	// An array read from a JSON source must serialize as a YAML sequence.
	tree := node.NewTree()
	tree.Set("tags", node.Opaque(json.RawMessage(`["a", 2, true]`)))

	out, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	tree2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse error: %v\noutput:\n%s", err, out)
	}
	n, _ := tree2.Get("tags")
	if n.Kind != node.KindOpaque {
		t.Fatalf("tags = %+v, want opaque sequence (output: %s)", n, out)
	}

	var items []any
	if err := n.Opaque.(*yaml.Node).Decode(&items); err != nil {
		t.Fatalf("decoding sequence: %v", err)
	}
	if len(items) != 3 || items[0] != "a" {
		t.Errorf("items = %v (output: %s)", items, out)
	}
}

func TestWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.yaml")

	tree := node.NewTree()
	tree.Set("a", node.String("b"))

	if err := WriteFile(tree, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree2, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if n, _ := tree2.Get("a"); n.Str != "b" {
		t.Errorf("a = %+v", n)
	}
}
