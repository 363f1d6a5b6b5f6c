// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"
)

type (
	// ActionableError is a user-facing failure of a split, rebuild or reload.
	// Besides the cause it names the flow file or source tree involved, the
	// group files or nodes that triggered it and what the user can do next.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("rebuild flows").
	//		WithResource("/data/src").
	//		WithDiagnostics(read.Diagnostics).
	//		WithSuggestion("Fix or remove the files listed above").
	//		Wrap(ErrSourceTreeInvalid).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "rebuild flows".
		Operation string
		// Resource is the flow file, source tree or config path involved.
		Resource string
		// Affected lists the group files or nodes at fault, one entry each.
		Affected []string
		// Suggestions are next steps for the user.
		Suggestions []string
		// Cause is the underlying error.
		Cause error
	}

	// ErrorContext builds an ActionableError step by step.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns "failed to <operation>: <resource>: <cause>". Affected
// entries are summarized as a count; Format lists them.
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	msg := strings.Join(parts, ": ")

	switch n := len(e.Affected); n {
	case 0:
		return msg
	case 1:
		return msg + " (" + e.Affected[0] + ")"
	default:
		return fmt.Sprintf("%s (%d problems)", msg, n)
	}
}

// Unwrap returns the cause so sentinels such as ErrSourceTreeInvalid stay
// reachable with errors.Is.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for the terminal: the message, the affected
// files or nodes, the suggestions and, when verbose, the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Affected) > 0 {
		sb.WriteString("\n\nAffected:")
		for _, a := range e.Affected {
			sb.WriteString("\n  - ")
			sb.WriteString(a)
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • ")
			sb.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err)
			depth++
		}
	}
	return sb.String()
}

// HasSuggestions reports whether the error carries next steps.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the failed operation, e.g. "split flows".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the path involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a next step.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// WithDiagnostics records the error-severity diagnostics as affected
// entries: "<file>: <message>" for source tree files, the message alone
// for nodes, whose messages already name them. Warnings are left to the log.
func (c *ErrorContext) WithDiagnostics(diags []flowset.Diagnostic) *ErrorContext {
	for _, d := range flowset.Errors(diags) {
		entry := d.Message
		if d.File != "" {
			entry = d.File + ": " + d.Message
		}
		c.err.Affected = append(c.err.Affected, entry)
	}
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	out := c.err
	out.Affected = append([]string(nil), c.err.Affected...)
	out.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &out
}

// BuildError is Build for return statements. It returns a nil interface,
// not a typed nil, when no operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
