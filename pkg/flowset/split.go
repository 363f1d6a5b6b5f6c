// SPDX-License-Identifier: MPL-2.0

package flowset

import (
	"fmt"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

type (
	// SplitResult is the outcome of Split.
	SplitResult struct {
		// Set holds the groups of every kind.
		Set FlowSet
		// PageOrder holds the tab ids in document order.
		PageOrder []string
		// Diagnostics lists non-fatal conditions, including dropped nodes.
		Diagnostics []Diagnostic
	}

	// groupRef locates a group inside a FlowSet under construction.
	groupRef struct {
		kind  flownode.Kind
		index int
	}
)

// Split partitions a monolith into groups. It never fails: malformed input is
// reported through SplitResult.Diagnostics and the offending nodes are left
// out of the set.
func Split(nodes []flownode.Node) SplitResult {
	res := SplitResult{PageOrder: PageOrder(nodes)}
	if len(nodes) == 0 {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeEmptyMonolith,
			Message:  "flow document contains no nodes",
		})
		return res
	}

	var (
		set     FlowSet
		members []flownode.Node
		seenIDs = make(map[string]bool, len(nodes))
	)

	for i, n := range nodes {
		if n == nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeNullNode,
				Message:  fmt.Sprintf("element %d is null and was skipped", i),
			})
			continue
		}

		id := n.ID()
		if id != "" && seenIDs[id] {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeDuplicateID,
				Message:  fmt.Sprintf("node id %q is used more than once", id),
				NodeID:   id,
			})
		}
		seenIDs[id] = true

		switch kind := flownode.Classify(n); kind {
		case flownode.KindPage:
			set.Pages = append(set.Pages, NewGroup(kind, n))
		case flownode.KindTemplate:
			set.Templates = append(set.Templates, NewGroup(kind, n))
		case flownode.KindSharedConfig:
			if !n.HasType() {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeUntypedNode,
					Message:  fmt.Sprintf("node %q has neither type nor z and is treated as a config node", id),
					NodeID:   id,
				})
			}
			set.SharedConfigs = append(set.SharedConfigs, NewGroup(kind, n))
		case flownode.KindMember:
			members = append(members, n)
		}
	}

	for _, kind := range flownode.GroupKinds() {
		before := set.Groups(kind)
		after := Disambiguate(before)
		for i := range after {
			if after[i].NormalizedName != before[i].NormalizedName {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeRenamedGroup,
					Message: fmt.Sprintf("%s %q renamed to %q to avoid a file name collision",
						kind, before[i].Name, after[i].Name),
					NodeID: after[i].ID,
				})
			}
		}
		set = withGroups(set, kind, after)
	}

	res.Diagnostics = append(res.Diagnostics, attachMembers(&set, members)...)

	res.Set = FlowSet{
		Pages:         orderAll(set.Pages),
		Templates:     orderAll(set.Templates),
		SharedConfigs: orderAll(set.SharedConfigs),
	}
	return res
}

// attachMembers appends a sanitized copy of each member to every group whose
// id matches the member's z. Members without an owner are reported and dropped.
func attachMembers(set *FlowSet, members []flownode.Node) []Diagnostic {
	owners := make(map[string][]groupRef)
	for _, kind := range flownode.GroupKinds() {
		for i, g := range set.Groups(kind) {
			owners[g.ID] = append(owners[g.ID], groupRef{kind: kind, index: i})
		}
	}

	var diags []Diagnostic
	for _, m := range members {
		z, _ := m.Z()
		refs := owners[z]
		if len(refs) == 0 {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeOrphanMember,
				Message:  fmt.Sprintf("node %q references unknown tab or subflow %q and was dropped", m.ID(), z),
				NodeID:   m.ID(),
			})
			continue
		}
		for _, ref := range refs {
			g := &set.Groups(ref.kind)[ref.index]
			g.Content = append(g.Content, flownode.Sanitize(m))
		}
	}
	return diags
}

func withGroups(set FlowSet, kind flownode.Kind, groups []Group) FlowSet {
	switch kind {
	case flownode.KindPage:
		set.Pages = groups
	case flownode.KindTemplate:
		set.Templates = groups
	case flownode.KindSharedConfig:
		set.SharedConfigs = groups
	case flownode.KindMember:
	}
	return set
}
