// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `flow-splitter config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage flow-splitter settings",
		Long: `Manage flow-splitter settings.

Settings are stored in:
  - Linux: ~/.config/flow-splitter/flow-splitter.cue
  - macOS: ~/Library/Application Support/flow-splitter/flow-splitter.cue
  - Windows: %APPDATA%\flow-splitter\flow-splitter.cue

FLOW_SPLITTER_<KEY> environment variables and a .env file override the file,
e.g. FLOW_SPLITTER_ADMIN_URL=http://localhost:1880.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, path, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			showSettings(app.stdout, s, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective settings as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, err := app.loadSettings(cmd, rootFlags)
			if err != nil {
				return app.fail(err, rootFlags.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(&s))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default settings file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), KeyStyle.Render(path))
			} else {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Settings file already exists:"), KeyStyle.Render(path))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func showSettings(w io.Writer, s config.Settings, path string) {
	row := func(indent, key string, value any) {
		fmt.Fprintf(w, "%s%s: %s\n", indent, KeyStyle.Render(key), SuccessStyle.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, TitleStyle.Render("Current Settings"))
	fmt.Fprintln(w)
	if path != "" {
		row("", "Settings file", path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Settings file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	row("", "user_dir", s.UserDir)
	row("", "flow_file", s.FlowFile)
	row("", "projects_enabled", s.ProjectsEnabled)
	row("", "keep_monolith", s.KeepMonolith)
	row("", "delete_delay", s.DeleteDelay)
	row("", "require_config", s.RequireConfig)

	fmt.Fprintf(w, "\n%s:\n", KeyStyle.Render("split"))
	row("  ", "file_format", s.Split.FileFormat)
	row("  ", "destination_folder", s.Split.DestinationFolder)

	fmt.Fprintf(w, "\n%s:\n", KeyStyle.Render("admin"))
	if s.Admin.URL == "" {
		fmt.Fprintf(w, "  %s: %s\n", KeyStyle.Render("url"), SubtitleStyle.Render("(not set, reloads disabled)"))
	} else {
		row("  ", "url", s.Admin.URL)
	}
	token := "(not set)"
	if s.Admin.Token != "" {
		token = "(set)"
	}
	fmt.Fprintf(w, "  %s: %s\n", KeyStyle.Render("token"), SubtitleStyle.Render(token))
	row("  ", "timeout", s.Admin.Timeout)

	fmt.Fprintf(w, "\n%s:\n", KeyStyle.Render("log"))
	row("  ", "level", s.Log.Level)
	row("  ", "format", s.Log.Format)
}
