// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/codec"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/platform"

	"github.com/spf13/cobra"
)

func newNormalizeCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "normalize <name>...",
		Short: "Show the file name used for a tab, subflow or config node name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := codec.For(config.FileFormat(format))
			if err != nil {
				return err
			}
			for _, name := range args {
				stem := flowset.Normalize(name)
				if stem == "" {
					fmt.Fprintf(app.stdout, "%s\t%s\n", name, WarningStyle.Render("(empty, the node id is used)"))
					continue
				}
				fmt.Fprintf(app.stdout, "%s\t%s.%s\n", name, platform.PortableFileStem(stem), c.Ext())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(config.FileFormatYAML), "file format: yaml or json")
	return cmd
}
