// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath string
	envFile    string
	userDir    string
	flowFile   string
	projects   bool
	verbose    bool
	logFormat  string
	logLevel   string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "flow-splitter",
		Short: "Split Node-RED flow files into a reviewable source tree",
		Long: TitleStyle.Render("flow-splitter") + SubtitleStyle.Render(" - Node-RED flows as a source tree") + `

Node-RED stores every flow of a project in one JSON file. flow-splitter
splits that file into one file per tab, subflow and config node, and
rebuilds the flow file from those files when Node-RED needs it.

` + SubtitleStyle.Render("Examples:") + `
  flow-splitter split               Split flows.json into ./src
  flow-splitter rebuild             Rebuild flows.json and reload Node-RED
  flow-splitter watch               Follow the flow file and keep both in sync
  flow-splitter normalize "My Tab"  Show the file name used for a tab
  flow-splitter config show         Show the effective settings`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "settings file (default is <config dir>/flow-splitter/flow-splitter.cue)")
	pf.StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file with FLOW_SPLITTER_* overrides")
	pf.StringVar(&flags.userDir, "user-dir", "", "Node-RED user directory (default ~/.node-red)")
	pf.StringVar(&flags.flowFile, "flow-file", "", "flow file name (default flows.json)")
	pf.BoolVar(&flags.projects, "projects", false, "resolve the active Node-RED project instead of the user directory")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text, json or logfmt")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newSplitCommand(app, flags),
		newRebuildCommand(app, flags),
		newWatchCommand(app, flags),
		newNormalizeCommand(app),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
