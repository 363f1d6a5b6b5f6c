// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"

	"github.com/spf13/cobra"
)

type splitFlagValues struct {
	format string
	dest   string
	keep   bool
}

func newSplitCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &splitFlagValues{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split the flow file into a source tree",
		Long: `Split the flow file of the Node-RED project into one file per tab,
subflow and config node.

The source tree layout and encoding come from .config.flow-splitter.json in
the project. Projects split for the first time use --format and --dest.
The flow file is removed afterwards unless --keep is set or nodes had to be
dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplit(cmd, app, rootFlags, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "", "file format for projects without a splitter config: yaml or json")
	cmd.Flags().StringVar(&flags.dest, "dest", "", "source folder for projects without a splitter config")
	cmd.Flags().BoolVar(&flags.keep, "keep", false, "keep the flow file after splitting")

	return cmd
}

func runSplit(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *splitFlagValues) error {
	sess, err := app.newSession(cmd, rootFlags, func(c *cobra.Command, s *config.Settings) {
		if c.Flags().Changed("format") {
			s.Split.FileFormat = config.FileFormat(flags.format)
		}
		if c.Flags().Changed("dest") {
			s.Split.DestinationFolder = config.FolderName(flags.dest)
		}
		if c.Flags().Changed("keep") {
			s.KeepMonolith = flags.keep
		}
	})
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}

	rep, err := sess.service.SplitFlowFile(cmd.Context(), sess.project)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	printSplitReport(app.stdout, rep)
	return nil
}
