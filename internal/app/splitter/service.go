// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/codec"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/logging"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/project"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/sourcetree"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"

	"github.com/charmbracelet/log"
)

var (
	// ErrMissingConfig is returned by Rebuild when the project has no splitter
	// config and Settings.RequireConfig is set.
	ErrMissingConfig = errors.New("project has no splitter config")
	// ErrSourceTreeInvalid is returned by Rebuild when group files could not be
	// decoded. The flow file is left untouched.
	ErrSourceTreeInvalid = errors.New("source tree has unreadable files")
	// ErrReloadFailed wraps a failed host reload after a successful rebuild.
	ErrReloadFailed = errors.New("host reload failed")
	// ErrNodesDropped is the cause of SplitReport.Dropped.
	ErrNodesDropped = errors.New("nodes could not be placed in the source tree")
)

type (
	// Reloader asks the host to load the flow file again.
	Reloader interface {
		Reload(ctx context.Context) error
	}

	// NopReloader is the Reloader used when no host is reachable.
	NopReloader struct{}

	// TreeFactory opens the source tree rooted at root.
	TreeFactory func(root string, c codec.Codec) *sourcetree.Tree

	// Dependencies are the collaborators of a Service. Config and Settings are
	// required; the others default to no-op implementations.
	Dependencies struct {
		Config   config.TransformStore
		Settings config.Settings
		Trees    TreeFactory
		Reloader Reloader
		Logger   *log.Logger
		// Sleep waits before the flow file is removed. It defaults to a
		// context-aware timer.
		Sleep func(ctx context.Context, d time.Duration) error
	}

	// Service runs split and rebuild operations one at a time.
	Service struct {
		mu   sync.Mutex
		deps Dependencies
	}

	// SplitReport describes a finished split.
	SplitReport struct {
		Project     project.Project
		Config      config.TransformConfig
		ConfigFound bool
		Pages       int
		Templates   int
		Configs     int
		Nodes       int
		Diagnostics []flowset.Diagnostic
		// Skipped is set when an empty document was not written over an
		// existing source tree.
		Skipped bool
		// MonolithRemoved reports whether the flow file was deleted.
		MonolithRemoved bool
		// Dropped lists the nodes left out of the tree, wrapping
		// ErrNodesDropped. When set the flow file is kept.
		Dropped *issue.ActionableError
	}

	// RebuildReport describes a finished rebuild.
	RebuildReport struct {
		Project     project.Project
		Config      config.TransformConfig
		ConfigFound bool
		Files       int
		Nodes       int
		Diagnostics []flowset.Diagnostic
		Reloaded    bool
	}

	// Action is what OnFlowsLoaded decided to do.
	Action string

	// Outcome is the result of OnFlowsLoaded. Exactly one report is set.
	Outcome struct {
		Action  Action
		Split   *SplitReport
		Rebuild *RebuildReport
	}
)

const (
	ActionSplit   Action = "split"
	ActionRebuild Action = "rebuild"
)

// Reload implements Reloader.
func (NopReloader) Reload(context.Context) error { return nil }

// New returns a Service.
func New(deps Dependencies) *Service {
	if deps.Trees == nil {
		deps.Trees = func(root string, c codec.Codec) *sourcetree.Tree {
			return sourcetree.New(root, c, deps.Logger)
		}
	}
	if deps.Reloader == nil {
		deps.Reloader = NopReloader{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Sleep == nil {
		deps.Sleep = sleep
	}
	return &Service{deps: deps}
}

// Split partitions flows into the source tree of p, records the page order
// and removes the flow file unless Settings.KeepMonolith is set or members
// had to be dropped.
func (s *Service) Split(ctx context.Context, p project.Project, flows []flownode.Node) (SplitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.split(ctx, p, flows)
}

// SplitFlowFile reads the flow file of p and splits it.
func (s *Service) SplitFlowFile(ctx context.Context, p project.Project) (SplitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flows, err := p.ReadMonolith()
	if err != nil {
		return SplitReport{}, issue.NewErrorContext().
			WithOperation("read flow file").
			WithResource(p.FlowFilePath()).
			WithSuggestion("Check that Node-RED has written its flow file").
			WithSuggestion("Run 'flow-splitter rebuild' to recreate it from the source tree").
			Wrap(err).
			BuildError()
	}
	return s.split(ctx, p, flows)
}

// Rebuild reassembles the flow file of p from its source tree and asks the
// host to reload it.
func (s *Service) Rebuild(ctx context.Context, p project.Project) (RebuildReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(ctx, p)
}

// OnFlowsLoaded reacts to the host having loaded flows: a non-empty document
// is split, an empty one triggers a rebuild from the source tree.
func (s *Service) OnFlowsLoaded(ctx context.Context, p project.Project, flows []flownode.Node) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(flows) > 0 {
		rep, err := s.split(ctx, p, flows)
		return Outcome{Action: ActionSplit, Split: &rep}, err
	}
	rep, err := s.rebuild(ctx, p)
	return Outcome{Action: ActionRebuild, Rebuild: &rep}, err
}

func (s *Service) split(ctx context.Context, p project.Project, flows []flownode.Node) (SplitReport, error) {
	logger := s.deps.Logger.With("project", p.Path)

	cfg, found, err := s.loadConfig(p)
	if err != nil {
		return SplitReport{}, err
	}
	rep := SplitReport{Project: p, ConfigFound: found}

	res := flowset.Split(flows)
	rep.Diagnostics = res.Diagnostics
	logging.Diagnostics(logger, res.Diagnostics)

	tree, err := s.tree(p, cfg)
	if err != nil {
		return SplitReport{}, err
	}

	if res.Set.IsEmpty() {
		exists, err := tree.Exists()
		if err != nil {
			return SplitReport{}, err
		}
		if exists {
			logger.Warn("flow document is empty, keeping the existing source tree", "tree", tree.Root())
			rep.Config = cfg
			rep.Skipped = true
			return rep, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return SplitReport{}, err
	}
	if err := tree.Write(res.Set); err != nil {
		return SplitReport{}, issue.NewErrorContext().
			WithOperation("write source tree").
			WithResource(tree.Root()).
			WithSuggestion("Check the permissions of the destination folder").
			Wrap(err).
			BuildError()
	}

	cfg.TabsOrder = res.PageOrder
	if err := s.deps.Config.Save(p.Path, cfg); err != nil {
		return SplitReport{}, fmt.Errorf("save splitter config: %w", err)
	}

	rep.Config = cfg
	rep.Pages = len(res.Set.Pages)
	rep.Templates = len(res.Set.Templates)
	rep.Configs = len(res.Set.SharedConfigs)
	rep.Nodes = res.Set.NodeCount()
	logger.Info("split flows", "tree", tree.Root(), "tabs", rep.Pages, "subflows", rep.Templates,
		"configs", rep.Configs, "nodes", rep.Nodes)

	if flowset.HasErrors(res.Diagnostics) {
		rep.Dropped = issue.NewErrorContext().
			WithOperation("split flows").
			WithResource(p.FlowFilePath()).
			WithDiagnostics(res.Diagnostics).
			WithSuggestion("Move the listed nodes onto an existing tab or subflow in the editor and deploy again").
			WithSuggestion("The flow file is kept until every node has a home in the source tree").
			Wrap(ErrNodesDropped).
			Build()
	}

	switch {
	case s.deps.Settings.KeepMonolith:
	case res.Set.IsEmpty():
	case rep.Dropped != nil:
		logger.Warn("nodes were dropped, keeping the flow file", "file", p.FlowFilePath(),
			"dropped", len(rep.Dropped.Affected))
	default:
		if err := s.deps.Sleep(ctx, s.deps.Settings.DeleteDelay); err != nil {
			return rep, err
		}
		if err := p.RemoveMonolith(); err != nil {
			return rep, err
		}
		rep.MonolithRemoved = true
		logger.Debug("removed flow file", "file", p.FlowFilePath())
	}
	return rep, nil
}

func (s *Service) rebuild(ctx context.Context, p project.Project) (RebuildReport, error) {
	logger := s.deps.Logger.With("project", p.Path)

	cfg, found, err := s.loadConfig(p)
	if err != nil {
		return RebuildReport{}, err
	}
	if !found && s.deps.Settings.RequireConfig {
		return RebuildReport{}, issue.NewErrorContext().
			WithOperation("rebuild flows").
			WithResource(config.TransformConfigPath(p.Path)).
			WithSuggestion("Run 'flow-splitter split' once to create the splitter config").
			WithSuggestion("Set require_config: false to rebuild from the default source folder").
			Wrap(ErrMissingConfig).
			BuildError()
	}
	rep := RebuildReport{Project: p, Config: cfg, ConfigFound: found}

	tree, err := s.tree(p, cfg)
	if err != nil {
		return RebuildReport{}, err
	}
	read, err := tree.Read()
	if err != nil {
		return RebuildReport{}, err
	}
	rep.Files = read.Files
	rep.Diagnostics = read.Diagnostics
	logging.Diagnostics(logger, read.Diagnostics)

	if flowset.HasErrors(read.Diagnostics) {
		return rep, issue.NewErrorContext().
			WithOperation("rebuild flows").
			WithResource(tree.Root()).
			WithDiagnostics(read.Diagnostics).
			WithSuggestion("Fix or remove the files listed above").
			WithSuggestion("Run 'flow-splitter split' on a good flow file to rewrite the tree").
			Wrap(ErrSourceTreeInvalid).
			BuildError()
	}

	out, err := flowset.Rebuild(read.Set, cfg.TabsOrder)
	if err != nil {
		return rep, issue.NewErrorContext().
			WithOperation("rebuild flows").
			WithResource(tree.Root()).
			WithSuggestion("Check destinationFolder and fileFormat in " + config.TransformConfigFileName).
			WithSuggestion("Split an existing flow file with 'flow-splitter split'").
			Wrap(err).
			BuildError()
	}
	rep.Diagnostics = append(rep.Diagnostics, out.Diagnostics...)
	logging.Diagnostics(logger, out.Diagnostics)

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if err := p.WriteMonolith(out.Nodes); err != nil {
		return rep, issue.NewErrorContext().
			WithOperation("write flow file").
			WithResource(p.FlowFilePath()).
			Wrap(err).
			BuildError()
	}
	rep.Nodes = len(out.Nodes)

	if err := s.deps.Config.Save(p.Path, cfg); err != nil {
		return rep, fmt.Errorf("save splitter config: %w", err)
	}
	logger.Info("rebuilt flow file", "file", p.FlowFilePath(), "groups", read.Set.Len(), "nodes", rep.Nodes)

	if err := s.deps.Reloader.Reload(ctx); err != nil {
		return rep, issue.NewErrorContext().
			WithOperation("reload flows").
			WithResource(p.FlowFilePath()).
			WithSuggestion("Check admin.url and admin.token in the settings").
			WithSuggestion("The flow file is rebuilt; restart Node-RED to load it").
			Wrap(fmt.Errorf("%w: %w", ErrReloadFailed, err)).
			BuildError()
	}
	rep.Reloaded = true
	return rep, nil
}

func (s *Service) loadConfig(p project.Project) (config.TransformConfig, bool, error) {
	defaults := s.deps.Settings.Split.DefaultTransformConfig(p.FlowFileName)
	return s.deps.Config.Load(p.Path, defaults)
}

func (s *Service) tree(p project.Project, cfg config.TransformConfig) (*sourcetree.Tree, error) {
	c, err := codec.For(cfg.FileFormat)
	if err != nil {
		return nil, err
	}
	return s.deps.Trees(p.SourceRoot(cfg.DestinationFolder), c), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
