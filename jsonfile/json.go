// Package jsonfile implements reading and writing of JSON translation
// resource files as node trees.
//
// The expected file format is a JSON object with string leaf values,
// arbitrarily nested:
//
//	{
//	    "greeting": "Hello {{name}}!",
//	    "nav": {
//	        "home": "Home"
//	    }
//	}
//
// Key order from the source file is preserved on round-trip. Numbers keep
// their source literal (no float re-formatting), and arrays are carried
// through as raw JSON, byte-identical in content.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/icukit/node"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a JSON translation file.
func ParseFile(path string) (*node.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tree, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tree, nil
}

// Parse parses JSON data whose root is an object.
func Parse(data []byte) (*node.Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: root must be an object, got %v", tok)
	}

	tree, err := parseObject(dec)
	if err != nil {
		return nil, err
	}

	// Anything after the root object is malformed input, not padding.
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: trailing content: %w", err)
		}
		return nil, fmt.Errorf("parsing JSON: trailing content after root object: %v", tok)
	}

	return tree, nil
}

// parseObject consumes one object body (opening '{' already read) and
// returns it as an ordered tree.
func parseObject(dec *json.Decoder) (*node.Tree, error) {
	tree := node.NewTree()

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: expected string key, got %T", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing JSON value for %q: %w", key, err)
		}

		n, err := rawToNode(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing JSON value for %q: %w", key, err)
		}
		tree.Set(key, n)
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return tree, nil
}

// rawToNode classifies a raw JSON value by its first byte.
func rawToNode(raw json.RawMessage) (*node.Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	switch raw[0] {
	case '{':
		sub := json.NewDecoder(bytes.NewReader(raw))
		if _, err := sub.Token(); err != nil {
			return nil, err
		}
		tree, err := parseObject(sub)
		if err != nil {
			return nil, err
		}
		return node.TreeNode(tree), nil

	case '[':
		// Arrays are opaque — copied through unmodified.
		return node.Opaque(raw), nil

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return node.String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return node.Bool(b), nil

	case 'n':
		return node.Null(), nil

	default:
		// Number — keep the source literal.
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, err
		}
		return node.Number(num.String()), nil
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serialises a tree to JSON with 4-space indentation, preserving
// key order.
func Marshal(tree *node.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTree(&buf, tree, ""); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeTree(buf *bytes.Buffer, tree *node.Tree, indent string) error {
	if tree.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}

	inner := indent + "    "
	buf.WriteString("{\n")

	keys := tree.Keys()
	for i, key := range keys {
		n, _ := tree.Get(key)

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.WriteString(inner)
		buf.Write(keyBytes)
		buf.WriteString(": ")

		if err := writeNode(buf, n, inner); err != nil {
			return fmt.Errorf("writing value for %q: %w", key, err)
		}

		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString(indent)
	buf.WriteByte('}')
	return nil
}

func writeNode(buf *bytes.Buffer, n *node.Node, indent string) error {
	switch n.Kind {
	case node.KindTree:
		return writeTree(buf, n.Tree, indent)

	case node.KindString:
		raw, err := json.Marshal(n.Str)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil

	case node.KindNumber:
		return writeNumber(buf, n.Num)

	case node.KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil

	case node.KindNull:
		buf.WriteString("null")
		return nil

	case node.KindOpaque:
		return writeOpaque(buf, n.Opaque, indent)

	default:
		return fmt.Errorf("unknown node kind %d", n.Kind)
	}
}

// writeNumber writes a numeric literal. JSON-origin literals pass through
// verbatim (preserving source precision); YAML-origin literals that are not
// valid JSON numbers (hex, octal) are decoded with the YAML resolver and
// re-encoded. Non-finite values (.inf, .nan) have no JSON representation
// and are an error.
func writeNumber(buf *bytes.Buffer, literal string) error {
	if json.Valid([]byte(literal)) {
		buf.WriteString(literal)
		return nil
	}

	var v any
	if err := yaml.Unmarshal([]byte(literal), &v); err != nil {
		return fmt.Errorf("invalid numeric literal %q: %w", literal, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("numeric literal %q: %w", literal, err)
	}
	buf.Write(raw)
	return nil
}

// writeOpaque writes an opaque payload. JSON-origin payloads are re-indented
// raw bytes; YAML-origin payloads (cross-format conversion) are decoded and
// re-encoded as JSON.
func writeOpaque(buf *bytes.Buffer, payload any, indent string) error {
	switch v := payload.(type) {
	case json.RawMessage:
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, v, indent, "    "); err != nil {
			buf.Write(v)
			return nil
		}
		buf.Write(pretty.Bytes())
		return nil

	case *yaml.Node:
		var decoded any
		if err := v.Decode(&decoded); err != nil {
			return fmt.Errorf("decoding YAML value: %w", err)
		}
		raw, err := json.Marshal(decoded)
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil

	default:
		return fmt.Errorf("unsupported opaque payload %T", payload)
	}
}

// WriteFile serialises the tree and writes it to path.
func WriteFile(tree *node.Tree, path string) error {
	data, err := Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
