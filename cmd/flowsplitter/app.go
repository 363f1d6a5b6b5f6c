// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/app/splitter"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/logging"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/noderedapi"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/project"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and builds a session from it.
	App struct {
		Config    ConfigProvider
		Transform config.TransformStore
		Reloaders ReloaderFactory
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields are
	// replaced with production defaults.
	Dependencies struct {
		Config    ConfigProvider
		Transform config.TransformStore
		Reloaders ReloaderFactory
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads settings and reports the file they came from.
	ConfigProvider interface {
		LoadWithPath(ctx context.Context, opts config.LoadOptions) (*config.Settings, string, error)
	}

	// ReloaderFactory builds the host reloader for the admin API settings.
	ReloaderFactory func(admin config.AdminConfig) (splitter.Reloader, error)

	// session is everything a single command invocation works with.
	session struct {
		settings     config.Settings
		settingsPath string
		project      project.Project
		logger       *log.Logger
		service      *splitter.Service
	}

	// settingsOverride adjusts loaded settings from command flags.
	settingsOverride func(cmd *cobra.Command, s *config.Settings)
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Transform == nil {
		deps.Transform = config.NewTransformStore()
	}
	if deps.Reloaders == nil {
		deps.Reloaders = newAdminReloader
	}

	return &App{
		Config:    deps.Config,
		Transform: deps.Transform,
		Reloaders: deps.Reloaders,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}, nil
}

// loadSettings applies the root flags on top of the configured settings.
func (a *App) loadSettings(cmd *cobra.Command, flags *rootFlagValues, overrides ...settingsOverride) (config.Settings, string, error) {
	loaded, path, err := a.Config.LoadWithPath(cmd.Context(), config.LoadOptions{
		ConfigFilePath: flags.configPath,
		EnvFile:        flags.envFile,
	})
	if err != nil {
		return config.Settings{}, "", err
	}
	s := *loaded

	changed := cmd.Flags().Changed
	if changed("user-dir") {
		s.UserDir = flags.userDir
	}
	if changed("flow-file") {
		s.FlowFile = flags.flowFile
	}
	if changed("projects") {
		s.ProjectsEnabled = flags.projects
	}
	if changed("log-format") {
		s.Log.Format = config.LogFormat(flags.logFormat)
	}
	if changed("log-level") {
		s.Log.Level = flags.logLevel
	}
	for _, o := range overrides {
		o(cmd, &s)
	}

	if valid, errs := s.IsValid(); !valid {
		return config.Settings{}, "", issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(path).
			WithSuggestion("Check the command line flags").
			Wrap(&config.InvalidSettingsError{FieldErrors: errs}).
			BuildError()
	}
	return s, path, nil
}

// newSession loads settings, resolves the project and builds the splitter
// service for one command invocation.
func (a *App) newSession(cmd *cobra.Command, flags *rootFlagValues, overrides ...settingsOverride) (*session, error) {
	s, path, err := a.loadSettings(cmd, flags, overrides...)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(a.stderr, logging.Options{
		Level:   s.Log.Level,
		Format:  s.Log.Format,
		Verbose: flags.verbose,
	})
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("loaded settings", "file", path)
	}

	p, err := project.Resolve(s)
	if err != nil {
		return nil, err
	}
	if p.FlowFileFallback {
		logger.Debug("project package.json names no flow file, using the default", "file", p.FlowFileName)
	}

	reloader, err := a.Reloaders(s.Admin)
	if err != nil {
		return nil, err
	}

	return &session{
		settings:     s,
		settingsPath: path,
		project:      p,
		logger:       logger,
		service: splitter.New(splitter.Dependencies{
			Config:   a.Transform,
			Settings: s,
			Reloader: reloader,
			Logger:   logger,
		}),
	}, nil
}

// newAdminReloader returns an admin API client, or a no-op reloader when no
// admin URL is configured.
func newAdminReloader(admin config.AdminConfig) (splitter.Reloader, error) {
	if admin.URL == "" {
		return splitter.NopReloader{}, nil
	}
	client, err := noderedapi.NewClient(admin.URL,
		noderedapi.WithToken(admin.Token),
		noderedapi.WithTimeout(admin.Timeout),
		noderedapi.WithUserAgent("flow-splitter/"+Version),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
