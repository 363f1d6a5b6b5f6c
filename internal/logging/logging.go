// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log logger shared by every
// flow-splitter component.
package logging

import (
	"fmt"
	"io"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every text log line.
const Prefix = "flow-splitter"

// Options configures New.
type Options struct {
	// Level is a level name accepted by log.ParseLevel. Empty means info.
	Level string
	// Format selects the formatter. Empty means text.
	Format config.LogFormat
	// Verbose forces the debug level.
	Verbose bool
	// Timestamps adds a time field to every line.
	Timestamps bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	var formatter log.Formatter
	switch opts.Format {
	case "", config.LogFormatText:
		formatter = log.TextFormatter
	case config.LogFormatJSON:
		formatter = log.JSONFormatter
	case config.LogFormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		return nil, &config.InvalidLogFormatError{Value: opts.Format}
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamps,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Diagnostics logs each diagnostic at the level matching its severity.
func Diagnostics(logger *log.Logger, diags []flowset.Diagnostic) {
	for _, d := range diags {
		kv := []any{"code", d.Code}
		if d.NodeID != "" {
			kv = append(kv, "node", d.NodeID)
		}
		if d.File != "" {
			kv = append(kv, "file", d.File)
		}
		switch d.Severity {
		case flowset.SeverityError:
			logger.Error(d.Message, kv...)
		default:
			logger.Warn(d.Message, kv...)
		}
	}
}
