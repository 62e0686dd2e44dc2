// Package yamlfile implements reading and writing of YAML translation
// resource files as node trees.
//
// The expected file format is a nested YAML map with string leaf values:
//
//	greeting: Hello {{name}}!
//	nav:
//	  home: Home
//	  about: About
//
// Key order from the source file is preserved on round-trip. Non-string
// scalars (numbers, booleans, null) keep their source literal, and
// sequences are carried through unmodified.
package yamlfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/icukit/node"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a YAML translation file.
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

// Parse parses YAML data whose root is a mapping.
func Parse(data []byte) (*node.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty file — empty tree.
		return node.NewTree(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing YAML: root must be a mapping")
	}

	return mappingToTree(root)
}

// mappingToTree converts a yaml MappingNode into an ordered tree.
func mappingToTree(mapping *yaml.Node) (*node.Tree, error) {
	tree := node.NewTree()

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]

		n, err := yamlToNode(valNode)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", keyNode.Value, err)
		}
		tree.Set(keyNode.Value, n)
	}

	return tree, nil
}

// yamlToNode classifies one yaml value node.
func yamlToNode(valNode *yaml.Node) (*node.Node, error) {
	switch valNode.Kind {
	case yaml.MappingNode:
		tree, err := mappingToTree(valNode)
		if err != nil {
			return nil, err
		}
		return node.TreeNode(tree), nil

	case yaml.ScalarNode:
		switch valNode.Tag {
		case "", "!!str", "!str":
			return node.String(valNode.Value), nil
		case "!!int", "!!float":
			return node.Number(valNode.Value), nil
		case "!!bool":
			var b bool
			if err := valNode.Decode(&b); err != nil {
				return nil, fmt.Errorf("decoding bool: %w", err)
			}
			return node.Bool(b), nil
		case "!!null":
			return node.Null(), nil
		default:
			// Timestamps, binary, custom tags — pass through unmodified.
			return node.Opaque(valNode), nil
		}

	default:
		// Sequences, aliases — opaque, copied through unmodified.
		return node.Opaque(valNode), nil
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serialises a tree to YAML, preserving key order.
func Marshal(tree *node.Tree) ([]byte, error) {
	mapping, err := treeToMapping(tree)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(mapping)
}

func treeToMapping(tree *node.Tree) (*yaml.Node, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, key := range tree.Keys() {
		n, _ := tree.Get(key)

		valNode, err := nodeToYAML(n)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}

		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valNode,
		)
	}

	return mapping, nil
}

func nodeToYAML(n *node.Node) (*yaml.Node, error) {
	switch n.Kind {
	case node.KindTree:
		return treeToMapping(n.Tree)

	case node.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Str}, nil

	case node.KindNumber:
		tag := "!!int"
		if strings.ContainsAny(n.Num, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Num}, nil

	case node.KindBool:
		v := "false"
		if n.Bool {
			v = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}, nil

	case node.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case node.KindOpaque:
		return opaqueToYAML(n.Opaque)

	default:
		return nil, fmt.Errorf("unknown node kind %d", n.Kind)
	}
}

// opaqueToYAML converts an opaque payload to a yaml node. YAML-origin
// payloads are reused as-is; JSON-origin payloads (cross-format conversion)
// are reparsed — YAML is a superset of JSON, so raw JSON bytes parse
// directly.
func opaqueToYAML(payload any) (*yaml.Node, error) {
	switch v := payload.(type) {
	case *yaml.Node:
		return v, nil

	case json.RawMessage:
		var doc yaml.Node
		if err := yaml.Unmarshal(v, &doc); err != nil {
			return nil, fmt.Errorf("reparsing JSON value: %w", err)
		}
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("empty JSON value")
		}
		return doc.Content[0], nil

	default:
		return nil, fmt.Errorf("unsupported opaque payload %T", payload)
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
