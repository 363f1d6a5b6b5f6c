// SPDX-License-Identifier: MPL-2.0

package flowset

import "strconv"

// Disambiguate returns a copy of groups (all of one kind) in which every
// NormalizedName is unique. Groups whose names collide, or normalize to the
// same or an empty file name, are renamed "<name>-<id>". Groups with a unique
// name are left untouched. Should two rewritten names still collide, later
// groups get a numeric suffix in slice order.
func Disambiguate(groups []Group) []Group {
	out := cloneGroups(groups)

	counts := make(map[string]int, len(out))
	for _, g := range out {
		counts[g.NormalizedName]++
	}

	for i := range out {
		g := &out[i]
		if counts[g.NormalizedName] < 2 && g.NormalizedName != "" {
			continue
		}
		g.Name = g.Name + "-" + g.ID
		g.NormalizedName = Normalize(g.Name)
	}

	resolveResidual(out)
	return out
}

// resolveResidual suffixes duplicates that survived the id rewrite, which
// happens only with ids differing in case or punctuation.
func resolveResidual(groups []Group) {
	used := make(map[string]int, len(groups))
	for _, g := range groups {
		used[g.NormalizedName]++
	}
	seen := make(map[string]bool, len(groups))
	for i := range groups {
		g := &groups[i]
		if !seen[g.NormalizedName] {
			seen[g.NormalizedName] = true
			continue
		}
		base := g.NormalizedName
		n := 2
		candidate := base + "-" + strconv.Itoa(n)
		for used[candidate] > 0 {
			n++
			candidate = base + "-" + strconv.Itoa(n)
		}
		used[candidate]++
		seen[candidate] = true
		g.Name = g.Name + "-" + strconv.Itoa(n)
		g.NormalizedName = candidate
	}
}
