// SPDX-License-Identifier: MPL-2.0

package flowset

import (
	"errors"
	"fmt"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// ErrInvalidGroup is the sentinel error wrapped by InvalidGroupError.
var ErrInvalidGroup = errors.New("invalid group")

type (
	// Group is one tab, subflow or config node together with the nodes it
	// owns. Content[0] is always the defining node.
	Group struct {
		// ID is the id of the defining node.
		ID string
		// Name is the display name, rewritten by Disambiguate on collisions.
		Name string
		// NormalizedName is the file-safe form of Name.
		NormalizedName string
		// Content holds the defining node followed by its members.
		Content []flownode.Node
	}

	// FlowSet is the grouped representation of a flow document. Slices are
	// kept in storage order.
	FlowSet struct {
		Pages         []Group
		Templates     []Group
		SharedConfigs []Group
	}

	// InvalidGroupError is returned when a Group violates its invariants.
	InvalidGroupError struct {
		ID     string
		Reason string
	}
)

// NewGroup seeds a group of the given kind from its defining node. The
// defining node is sanitized and copied.
func NewGroup(kind flownode.Kind, defining flownode.Node) Group {
	name := DisplayName(kind, defining)
	return Group{
		ID:             defining.ID(),
		Name:           name,
		NormalizedName: Normalize(name),
		Content:        []flownode.Node{flownode.Sanitize(defining)},
	}
}

// DisplayName returns the group name derived from a defining node: the label
// for tabs, the explicit name for subflows and config nodes, falling back to
// "<category>-<id>" for subflows, "<type>-<id>" for config nodes, and to the
// bare id otherwise.
func DisplayName(kind flownode.Kind, n flownode.Node) string {
	id := n.ID()
	switch kind {
	case flownode.KindPage:
		if label := n.Label(); label != "" {
			return label
		}
	case flownode.KindTemplate:
		if name := n.Name(); name != "" {
			return name
		}
		if category := n.Category(); category != "" {
			return category + "-" + id
		}
	case flownode.KindSharedConfig:
		if name := n.Name(); name != "" {
			return name
		}
		if typ := n.Type(); typ != "" {
			return typ + "-" + id
		}
	case flownode.KindMember:
	}
	return id
}

// Validate checks the structural invariants of a group: non-empty content
// whose first element is the defining node.
func (g Group) Validate() error {
	if len(g.Content) == 0 {
		return &InvalidGroupError{ID: g.ID, Reason: "content is empty"}
	}
	if first := g.Content[0].ID(); first != g.ID {
		return &InvalidGroupError{ID: g.ID, Reason: fmt.Sprintf("first node is %q, not the defining node", first)}
	}
	return nil
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	g.Content = flownode.CloneAll(g.Content)
	return g
}

// Error implements the error interface.
func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("invalid group %q: %s", e.ID, e.Reason)
}

// Unwrap returns ErrInvalidGroup so callers can use errors.Is for programmatic detection.
func (e *InvalidGroupError) Unwrap() error { return ErrInvalidGroup }

// Groups returns the groups of the given kind. Member is not a group kind and
// yields nil.
func (s FlowSet) Groups(kind flownode.Kind) []Group {
	switch kind {
	case flownode.KindPage:
		return s.Pages
	case flownode.KindTemplate:
		return s.Templates
	case flownode.KindSharedConfig:
		return s.SharedConfigs
	case flownode.KindMember:
	}
	return nil
}

// Append adds groups of the given kind in storage order.
func (s *FlowSet) Append(kind flownode.Kind, groups ...Group) error {
	switch kind {
	case flownode.KindPage:
		s.Pages = append(s.Pages, groups...)
	case flownode.KindTemplate:
		s.Templates = append(s.Templates, groups...)
	case flownode.KindSharedConfig:
		s.SharedConfigs = append(s.SharedConfigs, groups...)
	default:
		return fmt.Errorf("append %s groups: %w", kind, &flownode.InvalidKindError{Value: kind})
	}
	return nil
}

// Len returns the number of groups across all kinds.
func (s FlowSet) Len() int {
	return len(s.Pages) + len(s.Templates) + len(s.SharedConfigs)
}

// IsEmpty reports whether the set holds no group at all.
func (s FlowSet) IsEmpty() bool { return s.Len() == 0 }

// NodeCount returns the number of nodes across all group contents.
func (s FlowSet) NodeCount() int {
	total := 0
	for _, kind := range flownode.GroupKinds() {
		for _, g := range s.Groups(kind) {
			total += len(g.Content)
		}
	}
	return total
}

// Clone returns a deep copy of the set.
func (s FlowSet) Clone() FlowSet {
	return FlowSet{
		Pages:         cloneGroups(s.Pages),
		Templates:     cloneGroups(s.Templates),
		SharedConfigs: cloneGroups(s.SharedConfigs),
	}
}

func cloneGroups(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}
