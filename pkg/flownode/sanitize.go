// SPDX-License-Identifier: MPL-2.0

package flownode

import "slices"

// volatileGroupFields are the layout dimensions the editor recomputes on every
// open of a group box. Persisting them only produces merge conflicts.
var volatileGroupFields = []string{"w", "h"}

// Sanitize returns a copy of n without its volatile layout fields. Only nodes
// of type "group" carry such fields; every other node is returned as a plain
// deep copy.
func Sanitize(n Node) Node {
	out := n.Clone()
	if n.Type() != TypeGroup {
		return out
	}
	for _, f := range volatileGroupFields {
		delete(out, f)
	}
	return out
}

// IsVolatileField reports whether field is dropped by Sanitize for nodes of
// the given type.
func IsVolatileField(nodeType, field string) bool {
	return nodeType == TypeGroup && slices.Contains(volatileGroupFields, field)
}
