// Package icu converts translation trees from the i18next message convention
// to ICU MessageFormat v1.
//
// Three rewrites are applied:
//
//   - Interpolation: "Hello {{name}}!" → "Hello {name}!"
//   - Plural families: sibling keys "item_zero"/"item_one"/"item_other" are
//     collapsed into a single "item" key holding one ICU plural expression:
//     "{count, plural, =0{No items} one{{count} item} other{{count} items}}"
//   - Nesting references: "See $t(other.key)" → "See [REF:other.key]"
//
// Conversion is a pure function over the tree: no input node is modified,
// non-string scalars and arrays pass through unchanged, and key order is
// preserved (plural families land after the plain keys of their level, in
// order of first appearance of the base key).
package icu

import (
	"regexp"
	"strings"

	"github.com/minios-linux/icukit/node"
)

// ---------------------------------------------------------------------------
// Matchers
// ---------------------------------------------------------------------------

var (
	// interpolationPattern matches an i18next placeholder {{...}}.
	// The capture is one or more non-'}' characters, so the first "}}"
	// closes the match; nested braces are not part of the format.
	interpolationPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

	// nestingPattern matches an i18next nesting reference $t(...).
	nestingPattern = regexp.MustCompile(`\$t\(([^)]+)\)`)

	// pluralSuffixPattern matches keys of the form <base>_<form> where form
	// is one of the six CLDR plural categories and base is non-empty.
	pluralSuffixPattern = regexp.MustCompile(`^(.+)_(zero|one|two|few|many|other)$`)
)

// pluralSelectors maps an i18next plural suffix to its ICU selector.
// Only "zero" changes spelling; the remaining categories are ICU keywords
// already. Unknown forms (unreachable through pluralSuffixPattern) pass
// through unchanged.
var pluralSelectors = map[string]string{
	"zero":  "=0",
	"one":   "one",
	"two":   "two",
	"few":   "few",
	"many":  "many",
	"other": "other",
}

// RewriteInterpolation rewrites every {{...}} placeholder in s to {...}.
// The captured content is copied verbatim, including format hints
// ("{{count, number}}" → "{count, number}"). A string with no double-brace
// spans is returned unchanged, so the rewrite is a no-op on strings that
// are already in ICU form.
func RewriteInterpolation(s string) string {
	return interpolationPattern.ReplaceAllString(s, "{$1}")
}

// RewriteNesting rewrites every $t(key) reference in s to [REF:key].
// References are not resolved; the marker flags them for manual follow-up.
func RewriteNesting(s string) string {
	return nestingPattern.ReplaceAllString(s, "[REF:$1]")
}

// SplitPluralKey decomposes a plural-family member key into its base key and
// plural form. ok is false when the key does not match <base>_<form>.
// Any matching key is treated as a plural member — there is no way to tell
// an intentional plural from a key that merely ends in "_one".
func SplitPluralKey(key string) (base, form string, ok bool) {
	m := pluralSuffixPattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ---------------------------------------------------------------------------
// Plural families
// ---------------------------------------------------------------------------

// family accumulates the members of one plural family during a level scan,
// in order of first appearance.
type family struct {
	forms []string
	texts map[string]string
}

// compile builds the ICU plural expression for a family. Branch text gets
// interpolation rewriting only — nesting references inside plural branches
// are left as-is, matching the behavior this tool migrates from.
// The plural variable is always the literal "count", regardless of what
// variables the branch text uses.
func (f *family) compile() string {
	var branches []string
	for _, form := range f.forms {
		selector := form
		if s, ok := pluralSelectors[form]; ok {
			selector = s
		}
		text := RewriteInterpolation(f.texts[form])
		branches = append(branches, selector+"{"+text+"}")
	}
	return "{count, plural, " + strings.Join(branches, " ") + "}"
}

// ---------------------------------------------------------------------------
// Tree conversion
// ---------------------------------------------------------------------------

// Convert converts a translation tree from i18next to ICU MessageFormat
// conventions and returns a new tree. The input is never modified.
//
// Per level: nested trees are converted recursively, string leaves are
// rewritten, non-string values are copied through, and plural-suffixed
// string siblings are grouped by base key and compiled after the full level
// has been scanned. A plain key that collides with a synthesized base key is
// overwritten in place (value replaced, position kept) — plural compilation
// runs after plain-key copying, preserved for compatibility with the
// convention this tool replaces.
func Convert(tree *node.Tree) *node.Tree {
	out := node.NewTree()

	var familyOrder []string
	families := make(map[string]*family)

	for _, key := range tree.Keys() {
		n, _ := tree.Get(key)

		switch n.Kind {
		case node.KindTree:
			out.Set(key, node.TreeNode(Convert(n.Tree)))

		case node.KindString:
			if base, form, ok := SplitPluralKey(key); ok {
				fam := families[base]
				if fam == nil {
					fam = &family{texts: make(map[string]string)}
					families[base] = fam
					familyOrder = append(familyOrder, base)
				}
				fam.forms = append(fam.forms, form)
				fam.texts[form] = n.Str
				continue
			}
			out.Set(key, node.String(RewriteNesting(RewriteInterpolation(n.Str))))

		default:
			// Numbers, booleans, nulls, and opaque values (arrays) are
			// copied through untouched, whatever their key looks like.
			out.Set(key, n)
		}
	}

	for _, base := range familyOrder {
		out.Set(base, node.String(families[base].compile()))
	}

	return out
}
