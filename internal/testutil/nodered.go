// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

// UserDir is a Node-RED user directory created below t.TempDir().
type UserDir struct {
	t    testing.TB
	path string
}

// NewUserDir creates an empty user directory.
func NewUserDir(t testing.TB) *UserDir {
	t.Helper()
	return &UserDir{t: t, path: t.TempDir()}
}

// Path returns the absolute user directory.
func (u *UserDir) Path() string { return u.path }

// Join returns a path below the user directory from slash-separated parts.
func (u *UserDir) Join(rel string) string {
	return filepath.Join(u.path, filepath.FromSlash(rel))
}

// WriteFile writes content at rel, creating parent directories.
func (u *UserDir) WriteFile(rel, content string) string {
	u.t.Helper()
	path := u.Join(rel)
	MustWriteFile(u.t, path, content)
	return path
}

// WriteJSON writes v as JSON at rel.
func (u *UserDir) WriteJSON(rel string, v any) string {
	u.t.Helper()
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		u.t.Fatalf("failed to encode %s: %v", rel, err)
	}
	return u.WriteFile(rel, string(data))
}

// AddProject creates projects/<name>/package.json. An empty flowFile leaves
// node-red.settings.flowFile out of the package.
func (u *UserDir) AddProject(name, flowFile string) string {
	u.t.Helper()
	pkg := map[string]any{"name": name}
	if flowFile != "" {
		pkg["node-red"] = map[string]any{
			"settings": map[string]any{"flowFile": flowFile},
		}
	}
	u.WriteJSON("projects/"+name+"/package.json", pkg)
	return u.Join("projects/" + name)
}

// SetActiveProject writes .config.projects.json naming name as the active
// project.
func (u *UserDir) SetActiveProject(name string) {
	u.t.Helper()
	u.WriteJSON(".config.projects.json", map[string]any{
		"activeProject": name,
		"projects":      map[string]any{name: map[string]any{}},
	})
}
