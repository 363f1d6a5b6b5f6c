// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{"default", Options{}, false, true},
		{"warn", Options{Level: "warn"}, false, false},
		{"verbose wins", Options{Level: "error", Verbose: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(&buf, tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			logger.Debug("dbg")
			logger.Info("inf")

			out := buf.String()
			if strings.Contains(out, "dbg") != tt.wantDebug {
				t.Errorf("debug output = %v, want %v:\n%s", !tt.wantDebug, tt.wantDebug, out)
			}
			if strings.Contains(out, "inf") != tt.wantInfo {
				t.Errorf("info output = %v, want %v:\n%s", !tt.wantInfo, tt.wantInfo, out)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: config.LogFormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("split done", "groups", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line["msg"] != "split done" || line["prefix"] != Prefix {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, Options{Level: "loud"}); err == nil {
		t.Error("unknown level should fail")
	}
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); !errors.Is(err, config.ErrInvalidLogFormat) {
		t.Errorf("unknown format error = %v, want ErrInvalidLogFormat", err)
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: config.LogFormatLogfmt})
	if err != nil {
		t.Fatal(err)
	}

	Diagnostics(logger, []flowset.Diagnostic{
		{Severity: flowset.SeverityWarning, Code: flowset.CodeRenamedGroup, Message: "renamed", NodeID: "t2"},
		{Severity: flowset.SeverityError, Code: flowset.CodeOrphanMember, Message: "dropped"},
		{Severity: flowset.SeverityError, Code: "unreadable_file", Message: "bad yaml", File: "tabs/broken.yaml"},
	})

	out := buf.String()
	for _, want := range []string{"level=warn", "code=renamed_group", "node=t2", "level=error", "code=orphan_member", "file=tabs/broken.yaml"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
