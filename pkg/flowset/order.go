// SPDX-License-Identifier: MPL-2.0

package flowset

import (
	"cmp"
	"slices"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// OrderContent returns a copy of g whose content is sorted by node id, with
// the defining node moved to the front. Sorting by id keeps files stable no
// matter in which order the editor emitted the nodes.
func OrderContent(g Group) Group {
	out := g.Clone()
	if len(out.Content) == 0 {
		return out
	}
	slices.SortStableFunc(out.Content, func(a, b flownode.Node) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	idx := slices.IndexFunc(out.Content, func(n flownode.Node) bool { return n.ID() == out.ID })
	if idx > 0 {
		defining := out.Content[idx]
		copy(out.Content[1:idx+1], out.Content[:idx])
		out.Content[0] = defining
	}
	return out
}

// PageOrder returns the ids of all tabs in document order.
func PageOrder(nodes []flownode.Node) []string {
	order := make([]string, 0)
	for _, n := range nodes {
		if n == nil || n.Type() != flownode.TypeTab || n.ID() == "" {
			continue
		}
		order = append(order, n.ID())
	}
	return order
}

func orderAll(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = OrderContent(g)
	}
	return out
}
