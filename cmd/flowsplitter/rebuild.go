// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"

	"github.com/spf13/cobra"
)

type rebuildFlagValues struct {
	requireConfig bool
	noReload      bool
}

func newRebuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &rebuildFlagValues{}

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the flow file from the source tree",
		Long: `Rebuild the flow file of the Node-RED project from its source tree and
ask Node-RED to reload it through the admin API (admin.url in the settings).

Tabs are written in the order recorded at the last split.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRebuild(cmd, app, rootFlags, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.requireConfig, "require-config", false, "fail when the project has no splitter config")
	cmd.Flags().BoolVar(&flags.noReload, "no-reload", false, "do not ask Node-RED to reload the flows")

	return cmd
}

func runRebuild(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *rebuildFlagValues) error {
	sess, err := app.newSession(cmd, rootFlags, func(c *cobra.Command, s *config.Settings) {
		if c.Flags().Changed("require-config") {
			s.RequireConfig = flags.requireConfig
		}
		if flags.noReload {
			s.Admin.URL = ""
		}
	})
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}

	rep, err := sess.service.Rebuild(cmd.Context(), sess.project)
	if err != nil {
		if rep.Nodes > 0 {
			printRebuildReport(app.stdout, rep)
		}
		return app.fail(err, rootFlags.verbose)
	}
	printRebuildReport(app.stdout, rep)
	return nil
}
