// SPDX-License-Identifier: MPL-2.0

package flownode

import "encoding/json"

const (
	// FieldID is the unique node identifier.
	FieldID = "id"
	// FieldType is the node type tag.
	FieldType = "type"
	// FieldZ is the back-reference to the owning tab or subflow.
	FieldZ = "z"
	// FieldLabel is the display label of a tab.
	FieldLabel = "label"
	// FieldName is the explicit name of a subflow or config node.
	FieldName = "name"
	// FieldCategory is the palette category of a subflow.
	FieldCategory = "category"

	// TypeTab is the type of a flow tab.
	TypeTab = "tab"
	// TypeSubflow is the type of a subflow template.
	TypeSubflow = "subflow"
	// TypeGroup is the type of a visual grouping box.
	TypeGroup = "group"
)

// Node is a single flow element. The zero value is an empty node.
type Node map[string]any

// ID returns the node id, or "" when absent or not a string.
func (n Node) ID() string { return n.str(FieldID) }

// Type returns the node type, or "" when absent.
func (n Node) Type() string { return n.str(FieldType) }

// HasType reports whether the node carries a non-empty type.
func (n Node) HasType() bool { return n.Type() != "" }

// Z returns the owning group id and whether the z field is present at all.
// A present but non-string z is reported as present with an empty value.
func (n Node) Z() (string, bool) {
	v, ok := n[FieldZ]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// Label returns the tab label, or "".
func (n Node) Label() string { return n.str(FieldLabel) }

// Name returns the explicit node name, or "".
func (n Node) Name() string { return n.str(FieldName) }

// Category returns the subflow category, or "".
func (n Node) Category() string { return n.str(FieldCategory) }

func (n Node) str(key string) string {
	s, _ := n[key].(string)
	return s
}

// Clone returns a deep copy of the node. Nested objects and arrays are copied
// so the clone never aliases the receiver.
func (n Node) Clone() Node {
	if n == nil {
		return nil
	}
	out := make(Node, len(n))
	for k, v := range n {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case Node:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		// Strings, bools, numbers (including json.Number) and nil are immutable.
		return v
	}
}

// CloneAll deep-copies a node list.
func CloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Equal reports whether two nodes hold the same fields with the same values,
// comparing through their JSON form so json.Number and float64 compare equal.
func Equal(a, b Node) bool {
	if len(a) != len(b) {
		return false
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	var va, vb any
	if json.Unmarshal(ja, &va) != nil || json.Unmarshal(jb, &vb) != nil {
		return false
	}
	return jsonEqual(va, vb)
}

func jsonEqual(a, b any) bool {
	switch ta := a.(type) {
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, v := range ta {
			w, ok := tb[k]
			if !ok || !jsonEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !jsonEqual(ta[i], tb[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
