// SPDX-License-Identifier: MPL-2.0

package splitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/project"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/testutil"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"

	"github.com/google/go-cmp/cmp"
)

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *fakeReloader) Reload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

type harness struct {
	svc      *Service
	project  project.Project
	reloader *fakeReloader
	slept    []time.Duration
}

func newHarness(t *testing.T, mutate func(*config.Settings)) *harness {
	t.Helper()

	s := *config.DefaultSettings()
	s.UserDir = t.TempDir()
	if mutate != nil {
		mutate(&s)
	}

	h := &harness{
		project:  project.Project{Path: s.UserDir, FlowFileName: s.FlowFile},
		reloader: &fakeReloader{},
	}
	h.svc = New(Dependencies{
		Config:   config.NewTransformStore(),
		Settings: s,
		Reloader: h.reloader,
		Sleep: func(_ context.Context, d time.Duration) error {
			h.slept = append(h.slept, d)
			return nil
		},
	})
	return h
}

func monolith() []flownode.Node {
	return []flownode.Node{
		{"id": "t2", "type": "tab", "label": "Second"},
		{"id": "t1", "type": "tab", "label": "First"},
		{"id": "s1", "type": "subflow", "name": "Helper"},
		{"id": "c1", "type": "mqtt-broker", "name": "Broker"},
		{"id": "n2", "type": "debug", "z": "t1"},
		{"id": "n1", "type": "inject", "z": "t1", "props": []any{map[string]any{"p": "payload"}}},
		{"id": "n3", "type": "function", "z": "s1"},
		{"id": "g1", "type": "group", "z": "t2", "w": 200, "h": 100},
	}
}

func ids(nodes []flownode.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestService_SplitThenRebuild(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()

	if err := h.project.WriteMonolith(monolith()); err != nil {
		t.Fatal(err)
	}

	rep, err := h.svc.SplitFlowFile(ctx, h.project)
	if err != nil {
		t.Fatalf("SplitFlowFile() error = %v", err)
	}
	if rep.Pages != 2 || rep.Templates != 1 || rep.Configs != 1 || rep.Nodes != 8 {
		t.Errorf("report = %+v", rep)
	}
	if rep.ConfigFound {
		t.Error("first split should not find a config")
	}
	if !rep.MonolithRemoved || h.project.MonolithExists() {
		t.Error("flow file should be removed after a split")
	}
	if diff := cmp.Diff([]time.Duration{150 * time.Millisecond}, h.slept); diff != "" {
		t.Errorf("delete delay mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"t2", "t1"}, rep.Config.TabsOrder); diff != "" {
		t.Errorf("tabs order mismatch (-want +got):\n%s", diff)
	}

	for _, rel := range []string{"src/tabs/first.yaml", "src/tabs/second.yaml", "src/subflows/helper.yaml", "src/config-nodes/broker.yaml"} {
		if _, err := os.Stat(filepath.Join(h.project.Path, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	rb, err := h.svc.Rebuild(ctx, h.project)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !rb.ConfigFound || !rb.Reloaded || rb.Files != 4 || rb.Nodes != 8 {
		t.Errorf("rebuild report = %+v", rb)
	}
	if h.reloader.calls != 1 {
		t.Errorf("reload calls = %d, want 1", h.reloader.calls)
	}

	got, err := h.project.ReadMonolith()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"t2", "g1", "t1", "n1", "n2", "s1", "n3", "c1"}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("rebuilt order mismatch (-want +got):\n%s", diff)
	}
	for _, n := range got {
		if n.ID() == "g1" {
			if _, ok := n["w"]; ok {
				t.Error("group width should be stripped")
			}
		}
	}
}

func TestService_SplitKeepsMonolith(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*config.Settings)
		flows       []flownode.Node
		wantDropped bool
	}{
		{
			name:   "keep_monolith setting",
			mutate: func(s *config.Settings) { s.KeepMonolith = true },
			flows:  monolith(),
		},
		{
			name:        "dropped members",
			flows:       append(monolith(), flownode.Node{"id": "ghost", "type": "debug", "z": "nowhere"}),
			wantDropped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.mutate)
			if err := h.project.WriteMonolith(tt.flows); err != nil {
				t.Fatal(err)
			}

			rep, err := h.svc.Split(context.Background(), h.project, tt.flows)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if rep.MonolithRemoved || !h.project.MonolithExists() {
				t.Error("flow file should be kept")
			}
			if len(h.slept) != 0 {
				t.Error("no delay expected when the flow file is kept")
			}
			if got := rep.Dropped != nil; got != tt.wantDropped {
				t.Fatalf("Dropped = %v, want set %v", rep.Dropped, tt.wantDropped)
			}
			if !tt.wantDropped {
				return
			}
			if !errors.Is(rep.Dropped, ErrNodesDropped) {
				t.Errorf("Dropped = %v, want ErrNodesDropped", rep.Dropped)
			}
			if len(rep.Dropped.Affected) != 1 || !strings.Contains(rep.Dropped.Affected[0], `"ghost"`) {
				t.Errorf("Affected = %q, want the ghost node", rep.Dropped.Affected)
			}
		})
	}
}

func TestService_EmptySplitKeepsExistingTree(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()

	if _, err := h.svc.Split(ctx, h.project, monolith()); err != nil {
		t.Fatal(err)
	}

	rep, err := h.svc.Split(ctx, h.project, nil)
	if err != nil {
		t.Fatalf("Split(empty) error = %v", err)
	}
	if !rep.Skipped {
		t.Error("empty split over an existing tree should be skipped")
	}
	if len(flowset.Filter(rep.Diagnostics, flowset.CodeEmptyMonolith)) != 1 {
		t.Errorf("diagnostics = %v, want empty_monolith", rep.Diagnostics)
	}
	if _, err := os.Stat(filepath.Join(h.project.Path, "src", "tabs", "first.yaml")); err != nil {
		t.Error("existing group files must survive an empty split")
	}
}

func TestService_OnFlowsLoaded(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()

	out, err := h.svc.OnFlowsLoaded(ctx, h.project, monolith())
	if err != nil {
		t.Fatalf("OnFlowsLoaded(flows) error = %v", err)
	}
	if out.Action != ActionSplit || out.Split == nil || out.Rebuild != nil {
		t.Fatalf("outcome = %+v, want split", out)
	}

	out, err = h.svc.OnFlowsLoaded(ctx, h.project, []flownode.Node{})
	if err != nil {
		t.Fatalf("OnFlowsLoaded(empty) error = %v", err)
	}
	if out.Action != ActionRebuild || out.Rebuild == nil || out.Split != nil {
		t.Fatalf("outcome = %+v, want rebuild", out)
	}
	if !h.project.MonolithExists() {
		t.Error("rebuild should write the flow file")
	}
}

func TestService_RebuildErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing config when required", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, func(s *config.Settings) { s.RequireConfig = true })
		_, err := h.svc.Rebuild(context.Background(), h.project)
		if !errors.Is(err, ErrMissingConfig) {
			t.Fatalf("Rebuild() error = %v, want ErrMissingConfig", err)
		}
		if h.project.MonolithExists() {
			t.Error("nothing should be written")
		}
	})

	t.Run("empty tree", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		_, err := h.svc.Rebuild(context.Background(), h.project)
		if !errors.Is(err, flowset.ErrCannotReconstruct) {
			t.Fatalf("Rebuild() error = %v, want ErrCannotReconstruct", err)
		}
		if h.project.MonolithExists() || h.reloader.calls != 0 {
			t.Error("nothing should be written or reloaded")
		}
	})

	t.Run("unreadable group file", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		if _, err := h.svc.Split(context.Background(), h.project, monolith()); err != nil {
			t.Fatal(err)
		}
		bad := filepath.Join(h.project.Path, "src", "tabs", "broken.yaml")
		if err := os.WriteFile(bad, []byte("- id: [\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := h.svc.Rebuild(context.Background(), h.project)
		if !errors.Is(err, ErrSourceTreeInvalid) {
			t.Fatalf("Rebuild() error = %v, want ErrSourceTreeInvalid", err)
		}
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			t.Fatalf("Rebuild() error %T is not an ActionableError", err)
		}
		if len(ae.Affected) != 1 || !strings.HasPrefix(ae.Affected[0], "tabs/broken.yaml: ") {
			t.Errorf("Affected = %q, want tabs/broken.yaml", ae.Affected)
		}
		if !ae.HasSuggestions() {
			t.Error("unreadable tree should suggest a fix")
		}
	})

	t.Run("reload failure", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil)
		h.reloader.err = errors.New("connection refused")
		if _, err := h.svc.Split(context.Background(), h.project, monolith()); err != nil {
			t.Fatal(err)
		}

		rep, err := h.svc.Rebuild(context.Background(), h.project)
		if !errors.Is(err, ErrReloadFailed) {
			t.Fatalf("Rebuild() error = %v, want ErrReloadFailed", err)
		}
		var ae *issue.ActionableError
		if !errors.As(err, &ae) || ae.Operation != "reload flows" || ae.Resource != h.project.FlowFilePath() {
			t.Errorf("Rebuild() error = %#v, want a reload ActionableError", err)
		}
		if rep.Reloaded || !h.project.MonolithExists() {
			t.Error("flow file should be written even when the reload fails")
		}
	})
}

func TestService_UsesStoredConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	stored := config.TransformConfig{FileFormat: config.FileFormatJSON, DestinationFolder: "flows", TabsOrder: []string{}}
	if err := config.NewTransformStore().Save(h.project.Path, stored); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Split(context.Background(), h.project, monolith()); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.project.Path, "flows", "tabs", "first.json")); err != nil {
		t.Errorf("split should follow the stored config: %v", err)
	}
}

func TestService_SplitCanceledDuringDelay(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.svc.deps.Sleep = sleep

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.project.WriteMonolith(monolith()); err != nil {
		t.Fatal(err)
	}
	_, err := h.svc.Split(ctx, h.project, monolith())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Split() error = %v, want context.Canceled", err)
	}
	if !h.project.MonolithExists() {
		t.Error("flow file must not be removed after cancellation")
	}
}

func TestService_ProjectMode(t *testing.T) {
	t.Parallel()

	u := testutil.NewUserDir(t)
	u.AddProject("plant", "plant.json")
	u.SetActiveProject("plant")

	s := *config.DefaultSettings()
	s.UserDir = u.Path()
	s.ProjectsEnabled = true
	s.DeleteDelay = 0

	p, err := project.Resolve(s)
	if err != nil {
		t.Fatal(err)
	}
	svc := New(Dependencies{Config: config.NewTransformStore(), Settings: s})

	if _, err := svc.Split(context.Background(), p, monolith()); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if _, err := os.Stat(u.Join("projects/plant/src/tabs/first.yaml")); err != nil {
		t.Errorf("source tree should live in the project: %v", err)
	}
	if _, err := os.Stat(u.Join("projects/plant/" + config.TransformConfigFileName)); err != nil {
		t.Errorf("splitter config should live in the project: %v", err)
	}

	rep, err := svc.Rebuild(context.Background(), p)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !rep.Reloaded {
		t.Error("the no-op reloader should report success")
	}
	if _, err := os.Stat(u.Join("projects/plant/plant.json")); err != nil {
		t.Errorf("flow file should be rebuilt under its project name: %v", err)
	}
}
