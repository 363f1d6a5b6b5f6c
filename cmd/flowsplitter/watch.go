// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/app/splitter"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/watch"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"

	"github.com/spf13/cobra"
)

type watchFlagValues struct {
	debounce time.Duration
	once     bool
}

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &watchFlagValues{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the flow file and keep it in sync with the source tree",
		Long: `Watch the flow file of the Node-RED project.

Whenever Node-RED writes flows, the file is split into the source tree and
removed. An empty or missing flow file is rebuilt from the source tree and
Node-RED is asked to reload it. One pass runs at startup; removal of the flow
file is ignored. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, app, rootFlags, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.debounce, "debounce", 500*time.Millisecond, "quiet period before reacting to a change")
	cmd.Flags().BoolVar(&flags.once, "once", false, "run the startup pass and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *watchFlagValues) error {
	sess, err := app.newSession(cmd, rootFlags)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	ctx := cmd.Context()

	if err := sess.dispatch(ctx); err != nil {
		if flags.once {
			return app.fail(err, rootFlags.verbose)
		}
		sess.logger.Error("startup pass failed", "err", err)
	}
	if flags.once {
		return nil
	}

	flowFile := filepath.ToSlash(sess.project.FlowFileName)
	w, err := watch.New(watch.Config{
		BaseDir:  sess.project.Path,
		Patterns: []string{flowFile},
		Debounce: flags.debounce,
		Logger:   sess.logger,
		OnChange: func(ctx context.Context, changes []watch.Change) error {
			for _, c := range changes {
				if c.Removed {
					sess.logger.Debug("flow file removed", "file", c.Path)
					continue
				}
				return sess.dispatch(ctx)
			}
			return nil
		},
	})
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}

	sess.logger.Info("watching flow file", "file", sess.project.FlowFilePath())
	return w.Run(ctx)
}

// dispatch feeds the current flow file to the splitter as if Node-RED had
// just loaded it. A missing file counts as an empty document.
func (s *session) dispatch(ctx context.Context) error {
	flows, err := s.project.ReadMonolith()
	if errors.Is(err, fs.ErrNotExist) {
		flows = []flownode.Node{}
	} else if err != nil {
		return err
	}

	out, err := s.service.OnFlowsLoaded(ctx, s.project, flows)
	if err != nil {
		if errors.Is(err, splitter.ErrReloadFailed) {
			s.logger.Warn("flow file rebuilt but Node-RED did not reload it", "err", err)
			return nil
		}
		return err
	}
	s.logger.Debug("flows handled", "action", out.Action)
	return nil
}
