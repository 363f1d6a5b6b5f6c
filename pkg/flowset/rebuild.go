// SPDX-License-Identifier: MPL-2.0

package flowset

import (
	"errors"
	"fmt"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// ErrCannotReconstruct is returned by Rebuild when the set holds no group.
// Writing the resulting empty document would wipe a working flow file.
var ErrCannotReconstruct = errors.New("cannot reconstruct flow document from an empty set")

// RebuildResult is the outcome of Rebuild.
type RebuildResult struct {
	// Nodes is the flat flow document.
	Nodes []flownode.Node
	// Diagnostics lists stale or missing page order entries.
	Diagnostics []Diagnostic
}

// Rebuild flattens a set back into a flow document: tabs first in pageOrder
// sequence, then tabs absent from pageOrder in storage order, then subflows,
// then config nodes. Page order ids with no matching tab are skipped.
func Rebuild(set FlowSet, pageOrder []string) (RebuildResult, error) {
	if set.IsEmpty() {
		return RebuildResult{}, ErrCannotReconstruct
	}

	res := RebuildResult{Nodes: make([]flownode.Node, 0, set.NodeCount())}
	emit := func(g Group) {
		res.Nodes = append(res.Nodes, flownode.CloneAll(g.Content)...)
	}

	emitted := make([]bool, len(set.Pages))
	for _, id := range pageOrder {
		found := false
		for i, g := range set.Pages {
			if g.ID != id {
				continue
			}
			found = true
			if !emitted[i] {
				emit(g)
				emitted[i] = true
			}
		}
		if !found {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnknownPageOrder,
				Message:  fmt.Sprintf("page order lists %q but no such tab exists", id),
				NodeID:   id,
			})
		}
	}
	for i, g := range set.Pages {
		if emitted[i] {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeUnorderedPage,
			Message:  fmt.Sprintf("tab %q is missing from the page order and was appended", g.ID),
			NodeID:   g.ID,
		})
		emit(g)
	}

	for _, g := range set.Templates {
		emit(g)
	}
	for _, g := range set.SharedConfigs {
		emit(g)
	}
	return res, nil
}
