// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/cueutil"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/platform"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "flow-splitter"
	// ConfigFileName is the name of the settings file (without extension).
	ConfigFileName = "flow-splitter"
	// ConfigFileExt is the settings file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes every environment override, e.g. FLOW_SPLITTER_LOG_LEVEL.
	EnvPrefix = "FLOW_SPLITTER"
	// DefaultEnvFile is the dotenv file read from the working directory.
	DefaultEnvFile = ".env"
)

//go:embed config_schema.cue
var configSchema []byte

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	userDir := ".node-red"
	if home, err := os.UserHomeDir(); err == nil {
		userDir = filepath.Join(home, ".node-red")
	}
	return &Settings{
		UserDir:     userDir,
		FlowFile:    "flows.json",
		DeleteDelay: 150 * time.Millisecond,
		Split: SplitDefaults{
			FileFormat:        FileFormatYAML,
			DestinationFolder: "src",
		},
		Admin: AdminConfig{Timeout: 10 * time.Second},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// ConfigDir returns the flow-splitter configuration directory using
// platform conventions: %APPDATA% on Windows, ~/Library/Application Support
// on macOS and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the default settings file path.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions layers defaults, the CUE settings file, the dotenv file
// and FLOW_SPLITTER_* variables, in increasing precedence.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultSettings())

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'flow-splitter config init' to create a settings file").
				Wrap(fmt.Errorf("settings file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			cfgDir = dir
		}

		name := ConfigFileName + "." + ConfigFileExt
		switch {
		case fileExists(filepath.Join(cfgDir, name)):
			resolvedPath = filepath.Join(cfgDir, name)
		case fileExists(name):
			resolvedPath = name
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the #Settings schema").
				WithSuggestion("Run 'flow-splitter config show' to see the effective settings").
				Wrap(err).
				BuildError()
		}
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("load environment file").
			WithResource(opts.EnvFile).
			WithSuggestion("Check the KEY=value syntax of the file").
			Wrap(err).
			BuildError()
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}

	if valid, errs := s.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(resolvedPath).
			WithSuggestion("Fix the reported fields in the settings file or environment").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &s, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("user_dir", d.UserDir)
	v.SetDefault("flow_file", d.FlowFile)
	v.SetDefault("projects_enabled", d.ProjectsEnabled)
	v.SetDefault("keep_monolith", d.KeepMonolith)
	v.SetDefault("delete_delay", d.DeleteDelay)
	v.SetDefault("require_config", d.RequireConfig)
	v.SetDefault("split.file_format", string(d.Split.FileFormat))
	v.SetDefault("split.destination_folder", string(d.Split.DestinationFolder))
	v.SetDefault("admin.url", d.Admin.URL)
	v.SetDefault("admin.token", d.Admin.Token)
	v.SetDefault("admin.timeout", d.Admin.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", string(d.Log.Format))
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadCUEIntoViper validates a CUE settings file against #Settings and
// merges it into v.
//
// Settings are decoded into a map rather than a struct so viper keeps
// precedence between defaults, file and environment.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Settings",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var settingsMap map[string]any
	if err := unified.Decode(&settingsMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(settingsMap); err != nil {
		return fmt.Errorf("failed to merge settings: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// CreateDefaultConfig writes a default settings file unless one exists.
// It returns the path and whether a file was created.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultSettings())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write settings file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE renders settings as a CUE document accepted by #Settings.
func GenerateCUE(s *Settings) string {
	var sb strings.Builder

	sb.WriteString("// flow-splitter settings\n")
	sb.WriteString("// Environment variables FLOW_SPLITTER_<KEY> override these values.\n\n")

	fmt.Fprintf(&sb, "user_dir: %q\n", s.UserDir)
	fmt.Fprintf(&sb, "flow_file: %q\n", s.FlowFile)
	fmt.Fprintf(&sb, "projects_enabled: %v\n", s.ProjectsEnabled)
	fmt.Fprintf(&sb, "keep_monolith: %v\n", s.KeepMonolith)
	fmt.Fprintf(&sb, "delete_delay: %q\n", s.DeleteDelay.String())
	fmt.Fprintf(&sb, "require_config: %v\n", s.RequireConfig)

	sb.WriteString("\nsplit: {\n")
	fmt.Fprintf(&sb, "\tfile_format: %q\n", s.Split.FileFormat)
	fmt.Fprintf(&sb, "\tdestination_folder: %q\n", s.Split.DestinationFolder)
	sb.WriteString("}\n")

	sb.WriteString("\nadmin: {\n")
	if s.Admin.URL != "" {
		fmt.Fprintf(&sb, "\turl: %q\n", s.Admin.URL)
	}
	fmt.Fprintf(&sb, "\ttimeout: %q\n", s.Admin.Timeout.String())
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", s.Log.Level)
	fmt.Fprintf(&sb, "\tformat: %q\n", s.Log.Format)
	sb.WriteString("}\n")

	return sb.String()
}
