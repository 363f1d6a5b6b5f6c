// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/testutil"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()

	if s.FlowFile != "flows.json" {
		t.Errorf("FlowFile = %q, want flows.json", s.FlowFile)
	}
	if s.DeleteDelay != 150*time.Millisecond {
		t.Errorf("DeleteDelay = %s, want 150ms", s.DeleteDelay)
	}
	if s.Split.FileFormat != FileFormatYAML {
		t.Errorf("Split.FileFormat = %q, want yaml", s.Split.FileFormat)
	}
	if s.Split.DestinationFolder != "src" {
		t.Errorf("Split.DestinationFolder = %q, want src", s.Split.DestinationFolder)
	}
	if filepath.Base(s.UserDir) != ".node-red" {
		t.Errorf("UserDir = %q, want a .node-red directory", s.UserDir)
	}
	if valid, errs := s.IsValid(); !valid {
		t.Errorf("defaults must be valid, got %v", errs)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	s, path, err := NewProvider().LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if s.FlowFile != "flows.json" || s.Log.Level != "info" || s.Admin.Timeout != 10*time.Second {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "flow-splitter.cue"), `
user_dir:      "/srv/node-red"
flow_file:     "main.json"
keep_monolith: true
delete_delay:  "1s"
split: file_format: "json"
log: {
	level:  "debug"
	format: "logfmt"
}
`)

	s, path, err := NewProvider().LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if path != filepath.Join(dir, "flow-splitter.cue") {
		t.Errorf("path = %q", path)
	}

	if s.UserDir != "/srv/node-red" {
		t.Errorf("UserDir = %q", s.UserDir)
	}
	if s.FlowFile != "main.json" {
		t.Errorf("FlowFile = %q", s.FlowFile)
	}
	if !s.KeepMonolith {
		t.Error("KeepMonolith should be true")
	}
	if s.DeleteDelay != time.Second {
		t.Errorf("DeleteDelay = %s, want 1s", s.DeleteDelay)
	}
	if s.Split.FileFormat != FileFormatJSON {
		t.Errorf("Split.FileFormat = %q, want json", s.Split.FileFormat)
	}
	if s.Split.DestinationFolder != "src" {
		t.Errorf("Split.DestinationFolder = %q, want default src", s.Split.DestinationFolder)
	}
	if s.Log.Level != "debug" || s.Log.Format != LogFormatLogfmt {
		t.Errorf("Log = %+v", s.Log)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown log format", `log: format: "xml"`, "log.format"},
		{"unknown key", `colour: "red"`, "colour"},
		{"flow file with directory", `flow_file: "a/flows.json"`, "flow_file"},
		{"bad duration", `delete_delay: "soon"`, "delete_delay"},
		{"escaping destination", `split: destination_folder: "../outside"`, "split.destination_folder"},
		{"syntax error", `flow_file: `, "flow-splitter.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "flow-splitter.cue")
			testutil.MustWriteFile(t, path, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() should fail")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be actionable, got %T", err)
			}
			if !ae.HasSuggestions() {
				t.Error("error should carry suggestions")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil || !strings.Contains(err.Error(), "settings file not found") {
		t.Fatalf("Load() error = %v, want settings file not found", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "flow-splitter.cue"), `log: level: "warn"`)

	t.Setenv("FLOW_SPLITTER_LOG_LEVEL", "error")
	t.Setenv("FLOW_SPLITTER_PROJECTS_ENABLED", "true")
	t.Setenv("FLOW_SPLITTER_SPLIT_FILE_FORMAT", "json")
	t.Setenv("FLOW_SPLITTER_DELETE_DELAY", "2s")

	s, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want env value error", s.Log.Level)
	}
	if !s.ProjectsEnabled {
		t.Error("ProjectsEnabled should come from the environment")
	}
	if s.Split.FileFormat != FileFormatJSON {
		t.Errorf("Split.FileFormat = %q, want json", s.Split.FileFormat)
	}
	if s.DeleteDelay != 2*time.Second {
		t.Errorf("DeleteDelay = %s, want 2s", s.DeleteDelay)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("FLOW_SPLITTER_SPLIT_FILE_FORMAT", "toml")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidFileFormat) {
		t.Fatalf("Load() error = %v, want ErrInvalidFileFormat", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "FLOW_SPLITTER_ADMIN_TOKEN"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	testutil.MustWriteFile(t, envFile, "# admin credentials\n"+key+"=s3cret\n")

	s, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir, EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Admin.Token != "s3cret" {
		t.Errorf("Admin.Token = %q, want value from .env", s.Admin.Token)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigDirPath: dir,
		EnvFile:       filepath.Join(dir, ".env"),
	}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath() error = %v", err)
	}
	if path != filepath.Join(dir, "flow-splitter.cue") {
		t.Errorf("ConfigFilePath() = %q", path)
	}
}

func TestCreateDefaultConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, created, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}

	_, created, err = CreateDefaultConfig()
	if err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	if created {
		t.Error("second call must not overwrite the file")
	}

	s, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated file should load, got %v", err)
	}
	want := DefaultSettings()
	if s.FlowFile != want.FlowFile || s.DeleteDelay != want.DeleteDelay || s.Split != want.Split || s.Log != want.Log {
		t.Errorf("loaded %+v, want %+v", s, want)
	}
}

func TestDefaultSettings_UserDirUnderHome(t *testing.T) {
	home := t.TempDir()
	testutil.SetHomeDir(t, home)

	if got, want := DefaultSettings().UserDir, filepath.Join(home, ".node-red"); got != want {
		t.Errorf("UserDir = %q, want %q", got, want)
	}
}

func TestLoad_WorkingDirectoryFallback(t *testing.T) {
	wd := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(wd, "flow-splitter.cue"), "flow_file: \"cwd.json\"\n")
	testutil.MustChdir(t, wd)

	s, path, err := NewProvider().LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if path != "flow-splitter.cue" {
		t.Errorf("path = %q, want the working directory file", path)
	}
	if s.FlowFile != "cwd.json" {
		t.Errorf("FlowFile = %q, want cwd.json", s.FlowFile)
	}
}
