// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/app/splitter"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/codec"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/project"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/watch"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"
)

// issueRenderStyle is the glamour style used for issue catalog entries.
const issueRenderStyle = "dark"

// formatErrorForDisplay formats an error for user display. Actionable errors
// show their suggestions; verbose mode adds the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// issueFor maps an error to the catalog entry that explains it.
func issueFor(err error) (issue.Id, bool) {
	var syntaxErr *json.SyntaxError
	var settingsErr *config.InvalidSettingsError

	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.Is(err, watch.ErrWatcherExhausted):
		return issue.WatcherExhaustedId, true
	case errors.Is(err, splitter.ErrReloadFailed):
		return issue.ReloadFailedId, true
	case errors.Is(err, splitter.ErrMissingConfig):
		return issue.TransformConfigMissingId, true
	case errors.Is(err, config.ErrInvalidTransformConfig):
		return issue.TransformConfigInvalidId, true
	case errors.Is(err, flowset.ErrCannotReconstruct), errors.Is(err, splitter.ErrSourceTreeInvalid):
		return issue.SourceTreeEmptyId, true
	case errors.Is(err, project.ErrNoActiveProject), errors.Is(err, project.ErrNotNodeRedProject):
		return issue.ProjectNotFoundId, true
	case errors.Is(err, codec.ErrNotNodeList), errors.As(err, &syntaxErr), errors.Is(err, fs.ErrNotExist):
		return issue.FlowFileUnreadableId, true
	case errors.As(err, &settingsErr):
		return issue.SettingsLoadFailedId, true
	default:
		return 0, false
	}
}

// renderIssue writes the catalog entry for err, if there is one.
func renderIssue(w io.Writer, err error) {
	id, ok := issueFor(err)
	if !ok {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(issueRenderStyle)
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// fail renders the catalog entry for err and returns the error for cobra,
// with the matching exit code. Errors naming affected files or nodes are
// printed in full so the list is not lost to the one-line summary.
func (a *App) fail(err error, verbose bool) error {
	renderIssue(a.stderr, err)
	var ae *issue.ActionableError
	if verbose || (errors.As(err, &ae) && len(ae.Affected) > 0) {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	}
	code := ExitFailure
	if errors.Is(err, splitter.ErrReloadFailed) {
		code = ExitReloadFailed
	}
	return &ExitError{Code: code, Err: err}
}

func printSplitReport(w io.Writer, rep splitter.SplitReport) {
	if rep.Skipped {
		fmt.Fprintln(w, WarningStyle.Render("Flow file is empty, existing source tree kept"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Split"), KeyStyle.Render(rep.Project.FlowFilePath()))
	fmt.Fprintf(w, "  tabs: %d  subflows: %d  config nodes: %d  nodes: %d\n",
		rep.Pages, rep.Templates, rep.Configs, rep.Nodes)
	fmt.Fprintf(w, "  source tree: %s (%s)\n",
		KeyStyle.Render(rep.Project.SourceRoot(rep.Config.DestinationFolder)), rep.Config.FileFormat)
	printDiagnosticSummary(w, rep.Diagnostics)

	switch {
	case rep.MonolithRemoved:
		fmt.Fprintln(w, SubtitleStyle.Render("  flow file removed"))
	case rep.Dropped != nil:
		fmt.Fprintln(w, WarningStyle.Render("  flow file kept because nodes were dropped"))
		for _, a := range rep.Dropped.Affected {
			fmt.Fprintf(w, "    - %s\n", a)
		}
	default:
		fmt.Fprintln(w, SubtitleStyle.Render("  flow file kept"))
	}
}

func printRebuildReport(w io.Writer, rep splitter.RebuildReport) {
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Rebuilt"), KeyStyle.Render(rep.Project.FlowFilePath()))
	fmt.Fprintf(w, "  files: %d  nodes: %d\n", rep.Files, rep.Nodes)
	if !rep.ConfigFound {
		fmt.Fprintln(w, SubtitleStyle.Render("  no splitter config found, defaults used"))
	}
	printDiagnosticSummary(w, rep.Diagnostics)
	if rep.Reloaded {
		fmt.Fprintln(w, SubtitleStyle.Render("  reload requested"))
	}
}

func printDiagnosticSummary(w io.Writer, diags []flowset.Diagnostic) {
	var errs, warns int
	for _, d := range diags {
		if d.Severity == flowset.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	if errs > 0 {
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("  %d error(s)", errs))+SubtitleStyle.Render(" (see log)"))
	}
	if warns > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("  %d warning(s)", warns))+SubtitleStyle.Render(" (see log)"))
	}
}
