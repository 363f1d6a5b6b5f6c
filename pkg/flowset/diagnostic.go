// SPDX-License-Identifier: MPL-2.0

package flowset

const (
	// SeverityWarning marks a condition that does not change the output.
	SeverityWarning Severity = "warning"
	// SeverityError marks a node that was excluded from the output.
	SeverityError Severity = "error"

	// CodeEmptyMonolith reports a split of a document with no nodes.
	CodeEmptyMonolith = "empty_monolith"
	// CodeNullNode reports a null element in the document.
	CodeNullNode = "null_node"
	// CodeUntypedNode reports a node without a type, classified as a config node.
	CodeUntypedNode = "untyped_node"
	// CodeDuplicateID reports an id shared by more than one node.
	CodeDuplicateID = "duplicate_id"
	// CodeOrphanMember reports a member whose z matches no group; the node is dropped.
	CodeOrphanMember = "orphan_member"
	// CodeRenamedGroup reports a group renamed to avoid a file name collision.
	CodeRenamedGroup = "renamed_group"
	// CodeUnknownPageOrder reports a recorded page id with no matching tab.
	CodeUnknownPageOrder = "unknown_page_order_id"
	// CodeUnorderedPage reports a tab missing from the recorded page order.
	CodeUnorderedPage = "unordered_page"
)

type (
	// Severity is the diagnostic level.
	Severity string

	// Diagnostic is a non-fatal condition found while splitting or
	// rebuilding. Diagnostics are returned to the caller, which decides how to
	// render them.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g. "orphan_member").
		Code string
		// Message is the human-readable description.
		Message string
		// NodeID is the id of the node concerned, when there is one.
		NodeID string
		// File is the slash-separated source tree file concerned, when there is one.
		File string
	}
)

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the diagnostics with error severity.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Filter returns the diagnostics carrying the given code.
func Filter(diags []Diagnostic, code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
