// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	// FileFormatJSON stores source-tree files as indented JSON.
	FileFormatJSON FileFormat = "json"
	// FileFormatYAML stores source-tree files as YAML.
	FileFormatYAML FileFormat = "yaml"

	// LogFormatText is the human-readable log output.
	LogFormatText LogFormat = "text"
	// LogFormatJSON emits one JSON object per log line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt emits logfmt key=value lines.
	LogFormatLogfmt LogFormat = "logfmt"
)

var (
	// ErrInvalidFileFormat is returned when a FileFormat value is not recognized.
	ErrInvalidFileFormat = errors.New("invalid file format")
	// ErrInvalidFolderName is returned when a FolderName is empty or escapes the project.
	ErrInvalidFolderName = errors.New("invalid folder name")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidTransformConfig is the sentinel error wrapped by InvalidTransformConfigError.
	ErrInvalidTransformConfig = errors.New("invalid transform config")
	// ErrInvalidSettings is the sentinel error wrapped by InvalidSettingsError.
	ErrInvalidSettings = errors.New("invalid settings")
)

type (
	// FileFormat is the encoding of source-tree files.
	FileFormat string

	// InvalidFileFormatError is returned when a FileFormat value is not recognized.
	// It wraps ErrInvalidFileFormat for errors.Is() compatibility.
	InvalidFileFormatError struct {
		Value FileFormat
	}

	// FolderName is a single relative directory below the project root.
	FolderName string

	// InvalidFolderNameError is returned when a FolderName is empty, absolute
	// or climbs out of the project directory.
	InvalidFolderNameError struct {
		Value FolderName
	}

	// LogFormat selects the log output encoding.
	LogFormat string

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// TransformConfig is the per-project splitter state.
	TransformConfig struct {
		// FileFormat is the encoding of the source-tree files.
		FileFormat FileFormat `json:"fileFormat"`
		// DestinationFolder is the source-tree root, relative to the project.
		DestinationFolder FolderName `json:"destinationFolder"`
		// TabsOrder is the display order of tabs recorded at the last split.
		TabsOrder []string `json:"tabsOrder"`
		// MonolithFilename is the flow file name. It is never written to disk;
		// it is injected from Settings on every load.
		MonolithFilename string `json:"-"`
	}

	// InvalidTransformConfigError is returned when a TransformConfig has invalid fields.
	// It wraps ErrInvalidTransformConfig for errors.Is() compatibility.
	InvalidTransformConfigError struct {
		FieldErrors []error
	}

	// AdminConfig locates the Node-RED admin API used to reload flows.
	AdminConfig struct {
		// URL is the admin API root (e.g. http://localhost:1880). Empty disables reloads.
		URL string `json:"url" mapstructure:"url"`
		// Token is an optional bearer token.
		Token string `json:"token" mapstructure:"token"`
		// Timeout bounds each admin API request.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// LogConfig configures log output.
	LogConfig struct {
		// Level is a charmbracelet/log level name (debug, info, warn, error).
		Level string `json:"level" mapstructure:"level"`
		// Format selects text, json or logfmt output.
		Format LogFormat `json:"format" mapstructure:"format"`
	}

	// SplitDefaults seeds the TransformConfig of a project split for the first time.
	SplitDefaults struct {
		// FileFormat is the default source-tree encoding.
		FileFormat FileFormat `json:"file_format" mapstructure:"file_format"`
		// DestinationFolder is the default source-tree root.
		DestinationFolder FolderName `json:"destination_folder" mapstructure:"destination_folder"`
	}

	// Settings holds the tool configuration.
	Settings struct {
		// UserDir is the Node-RED user directory.
		UserDir string `json:"user_dir" mapstructure:"user_dir"`
		// FlowFile is the flow file name used outside project mode and as the
		// fallback monolith name.
		FlowFile string `json:"flow_file" mapstructure:"flow_file"`
		// ProjectsEnabled mirrors editorTheme.projects.enabled of Node-RED.
		ProjectsEnabled bool `json:"projects_enabled" mapstructure:"projects_enabled"`
		// KeepMonolith leaves the flow file in place after a split.
		KeepMonolith bool `json:"keep_monolith" mapstructure:"keep_monolith"`
		// DeleteDelay is waited before removing the flow file after a split,
		// giving the host time to finish writing it.
		DeleteDelay time.Duration `json:"delete_delay" mapstructure:"delete_delay"`
		// RequireConfig makes rebuild fail when the project has no splitter config.
		RequireConfig bool `json:"require_config" mapstructure:"require_config"`
		// Split holds defaults for projects without a splitter config.
		Split SplitDefaults `json:"split" mapstructure:"split"`
		// Admin locates the Node-RED admin API.
		Admin AdminConfig `json:"admin" mapstructure:"admin"`
		// Log configures log output.
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// InvalidSettingsError is returned when Settings have invalid fields.
	InvalidSettingsError struct {
		FieldErrors []error
	}
)

// FileFormats lists the supported source-tree encodings.
func FileFormats() []FileFormat {
	return []FileFormat{FileFormatYAML, FileFormatJSON}
}

// String returns the string representation of the FileFormat.
func (f FileFormat) String() string { return string(f) }

// IsValid returns whether the FileFormat is one of the supported encodings.
func (f FileFormat) IsValid() (bool, []error) {
	switch f {
	case FileFormatJSON, FileFormatYAML:
		return true, nil
	default:
		return false, []error{&InvalidFileFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidFileFormatError.
func (e *InvalidFileFormatError) Error() string {
	return fmt.Sprintf("invalid file format %q (valid: json, yaml)", e.Value)
}

// Unwrap returns ErrInvalidFileFormat for errors.Is() compatibility.
func (e *InvalidFileFormatError) Unwrap() error { return ErrInvalidFileFormat }

// String returns the string representation of the FolderName.
func (n FolderName) String() string { return string(n) }

// IsValid returns whether the FolderName is a non-empty relative path that
// stays inside the project directory.
func (n FolderName) IsValid() (bool, []error) {
	s := strings.TrimSpace(string(n))
	if s == "" || filepath.IsAbs(s) {
		return false, []error{&InvalidFolderNameError{Value: n}}
	}
	clean := filepath.Clean(s)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return false, []error{&InvalidFolderNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFolderNameError.
func (e *InvalidFolderNameError) Error() string {
	return fmt.Sprintf("invalid folder name %q: must be a relative path inside the project", e.Value)
}

// Unwrap returns ErrInvalidFolderName for errors.Is() compatibility.
func (e *InvalidFolderNameError) Unwrap() error { return ErrInvalidFolderName }

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is recognized.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidLogFormatError.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns ErrInvalidLogFormat for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// IsValid returns whether the TransformConfig has valid fields.
// It delegates to FileFormat.IsValid() and DestinationFolder.IsValid().
func (c TransformConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.FileFormat.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.DestinationFolder.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTransformConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Clone returns a deep copy of the TransformConfig.
func (c TransformConfig) Clone() TransformConfig {
	c.TabsOrder = slices.Clone(c.TabsOrder)
	return c
}

// Error implements the error interface for InvalidTransformConfigError.
func (e *InvalidTransformConfigError) Error() string {
	return fmt.Sprintf("invalid transform config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidTransformConfig and the field errors for errors.Is() compatibility.
func (e *InvalidTransformConfigError) Unwrap() []error {
	return append([]error{ErrInvalidTransformConfig}, e.FieldErrors...)
}

// IsValid returns whether the Settings have valid fields.
// It delegates to the split defaults and the log format.
func (s Settings) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := s.Split.FileFormat.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := s.Split.DestinationFolder.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := s.Log.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(s.FlowFile) == "" {
		errs = append(errs, errors.New("flow_file must not be empty"))
	}
	if s.DeleteDelay < 0 {
		errs = append(errs, fmt.Errorf("delete_delay must not be negative, got %s", s.DeleteDelay))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSettingsError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSettingsError.
func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("invalid settings: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidSettings and the field errors for errors.Is() compatibility.
func (e *InvalidSettingsError) Unwrap() []error {
	return append([]error{ErrInvalidSettings}, e.FieldErrors...)
}

func joinFieldErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
