// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/cueutil"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
)

// TransformConfigFileName is the per-project splitter config file.
const TransformConfigFileName = ".config.flow-splitter.json"

type (
	// TransformStore persists the per-project TransformConfig.
	TransformStore interface {
		// Load reads the config of the project at projectPath. Fields absent
		// from the file take their value from defaults, and MonolithFilename is
		// always taken from defaults. found is false when no file exists, in
		// which case a copy of defaults is returned.
		Load(projectPath string, defaults TransformConfig) (cfg TransformConfig, found bool, err error)
		// Save writes cfg, without MonolithFilename, to the project.
		Save(projectPath string, cfg TransformConfig) error
	}

	// FileTransformStore is the TransformStore backed by TransformConfigFileName.
	FileTransformStore struct{}

	// transformConfigDocument tells absent fields apart from zero values.
	transformConfigDocument struct {
		FileFormat        *FileFormat `json:"fileFormat"`
		DestinationFolder *FolderName `json:"destinationFolder"`
		TabsOrder         []string    `json:"tabsOrder"`
	}
)

// NewTransformStore returns a file-backed TransformStore.
func NewTransformStore() *FileTransformStore {
	return &FileTransformStore{}
}

// DefaultTransformConfig returns the config used for a project split for
// the first time.
func (d SplitDefaults) DefaultTransformConfig(monolithFilename string) TransformConfig {
	return TransformConfig{
		FileFormat:        d.FileFormat,
		DestinationFolder: d.DestinationFolder,
		TabsOrder:         []string{},
		MonolithFilename:  monolithFilename,
	}
}

// TransformConfigPath returns the location of the splitter config of a project.
func TransformConfigPath(projectPath string) string {
	return filepath.Join(projectPath, TransformConfigFileName)
}

// Load implements TransformStore.
func (s *FileTransformStore) Load(projectPath string, defaults TransformConfig) (TransformConfig, bool, error) {
	path := TransformConfigPath(projectPath)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults.Clone(), false, nil
	}
	if err != nil {
		return TransformConfig{}, false, fmt.Errorf("failed to read splitter config: %w", err)
	}

	doc, err := cueutil.ParseAndDecode[transformConfigDocument](configSchema, data, "#TransformConfig",
		cueutil.WithFilename(path))
	if err != nil {
		return TransformConfig{}, false, invalidTransformConfig(path, err)
	}

	cfg := defaults.Clone()
	if doc.FileFormat != nil {
		cfg.FileFormat = *doc.FileFormat
	}
	if doc.DestinationFolder != nil {
		cfg.DestinationFolder = *doc.DestinationFolder
	}
	if doc.TabsOrder != nil {
		cfg.TabsOrder = doc.TabsOrder
	}
	if cfg.TabsOrder == nil {
		cfg.TabsOrder = []string{}
	}

	if valid, errs := cfg.IsValid(); !valid {
		return TransformConfig{}, false, invalidTransformConfig(path, errors.Join(errs...))
	}
	return cfg, true, nil
}

// Save implements TransformStore.
func (s *FileTransformStore) Save(projectPath string, cfg TransformConfig) error {
	if valid, errs := cfg.IsValid(); !valid {
		return errors.Join(errs...)
	}

	cfg = cfg.Clone()
	if cfg.TabsOrder == nil {
		cfg.TabsOrder = []string{}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode splitter config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(TransformConfigPath(projectPath), data, 0o644); err != nil {
		return fmt.Errorf("failed to write splitter config: %w", err)
	}
	return nil
}

func invalidTransformConfig(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load splitter config").
		WithResource(path).
		WithSuggestion("fileFormat must be \"json\" or \"yaml\"").
		WithSuggestion("destinationFolder must be a relative folder inside the project").
		WithSuggestion("Delete the file to fall back to the defaults on the next split").
		Wrap(fmt.Errorf("%w: %w", ErrInvalidTransformConfig, err)).
		BuildError()
}
