package icu

import "github.com/minios-linux/icukit/node"

// Report summarizes what a conversion of the given tree would touch.
// Used by the read-only status command; Convert does not consult it.
type Report struct {
	// Strings is the number of string leaves.
	Strings int
	// Placeholders is the number of {{...}} interpolation spans.
	Placeholders int
	// References is the number of $t(...) nesting spans.
	References int
	// Families is the number of plural families (distinct base keys).
	Families int
	// FamilyMembers is the total number of plural-suffixed keys.
	FamilyMembers int
	// Collisions lists dot-joined paths of plain keys that a synthesized
	// plural expression would overwrite. These deserve a manual look: the
	// plain value is lost in the converted output.
	Collisions []string
}

// Inspect walks the tree and returns a conversion report.
func Inspect(tree *node.Tree) *Report {
	r := &Report{}
	inspectLevel(tree, "", r)
	return r
}

func inspectLevel(tree *node.Tree, prefix string, r *Report) {
	var bases []string
	seen := make(map[string]bool)

	for _, key := range tree.Keys() {
		n, _ := tree.Get(key)

		switch n.Kind {
		case node.KindTree:
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			inspectLevel(n.Tree, path, r)

		case node.KindString:
			r.Strings++
			r.Placeholders += len(interpolationPattern.FindAllStringIndex(n.Str, -1))
			r.References += len(nestingPattern.FindAllStringIndex(n.Str, -1))

			if base, _, ok := SplitPluralKey(key); ok {
				r.FamilyMembers++
				if !seen[base] {
					seen[base] = true
					bases = append(bases, base)
				}
			}
		}
	}

	for _, base := range bases {
		r.Families++
		if tree.Has(base) {
			path := base
			if prefix != "" {
				path = prefix + "." + base
			}
			r.Collisions = append(r.Collisions, path)
		}
	}
}
