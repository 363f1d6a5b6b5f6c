// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific CUE file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// EnvFile is a dotenv file loaded before environment overrides are read.
	// Missing files are ignored.
	EnvFile string
}

// Provider loads settings from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Settings, error)
}

// PathProvider is a Provider that also reports which file was loaded.
type PathProvider interface {
	Provider
	LoadWithPath(ctx context.Context, opts LoadOptions) (*Settings, string, error)
}

type fileProvider struct{}

// NewProvider creates a settings provider backed by files and environment.
func NewProvider() PathProvider {
	return &fileProvider{}
}

// Load reads settings from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	s, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadWithPath reads settings and returns the path of the CUE file used,
// or "" when only defaults and environment applied.
func (p *fileProvider) LoadWithPath(ctx context.Context, opts LoadOptions) (*Settings, string, error) {
	return loadWithOptions(ctx, opts)
}
