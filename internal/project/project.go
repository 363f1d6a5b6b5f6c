// SPDX-License-Identifier: MPL-2.0

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/config"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/issue"
)

const (
	// ProjectsConfigFile records the projects of a user directory.
	ProjectsConfigFile = ".config.projects.json"
	// LegacyConfigFile is the pre-1.0 runtime config that held the active project.
	LegacyConfigFile = ".config.json"
	// PackageFile describes a Node-RED project.
	PackageFile = "package.json"
	// ProjectsDir holds the projects below the user directory.
	ProjectsDir = "projects"
)

var (
	// ErrNoActiveProject is returned when projects are enabled but none is active.
	ErrNoActiveProject = errors.New("no active Node-RED project")
	// ErrNotNodeRedProject is returned when a project directory has no package.json.
	ErrNotNodeRedProject = errors.New("not a Node-RED project")
)

type (
	// Project is a resolved Node-RED project.
	Project struct {
		// Path is the project directory.
		Path string
		// Name is the active project name; empty outside project mode.
		Name string
		// IsProject reports whether Node-RED project mode is enabled.
		IsProject bool
		// FlowFileName is the flow file name relative to Path.
		FlowFileName string
		// FlowFileFallback reports that package.json did not name a flow file
		// and the settings value was used instead.
		FlowFileFallback bool
	}

	projectsConfig struct {
		ActiveProject string                     `json:"activeProject"`
		Projects      map[string]json.RawMessage `json:"projects"`
	}

	legacyConfig struct {
		ActiveProject string `json:"activeProject"`
		Projects      struct {
			ActiveProject string `json:"activeProject"`
		} `json:"projects"`
	}

	packageJSON struct {
		NodeRed struct {
			Settings struct {
				FlowFile string `json:"flowFile"`
			} `json:"settings"`
		} `json:"node-red"`
	}
)

// Resolve locates the project described by the settings.
func Resolve(s config.Settings) (Project, error) {
	if !s.ProjectsEnabled {
		return Project{
			Path:         s.UserDir,
			FlowFileName: s.FlowFile,
		}, nil
	}

	name, err := activeProject(s.UserDir)
	if err != nil {
		return Project{}, issue.NewErrorContext().
			WithOperation("resolve Node-RED project").
			WithResource(s.UserDir).
			WithSuggestion("Open a project in the Node-RED editor").
			WithSuggestion("Disable project mode with --projects=false").
			Wrap(err).
			BuildError()
	}

	p := Project{
		Path:      filepath.Join(s.UserDir, ProjectsDir, name),
		Name:      name,
		IsProject: true,
	}

	flowFile, err := packageFlowFile(p.Path)
	if err != nil {
		return Project{}, issue.NewErrorContext().
			WithOperation("read project package").
			WithResource(filepath.Join(p.Path, PackageFile)).
			WithSuggestion("Check that the project directory exists").
			Wrap(err).
			BuildError()
	}
	if flowFile == "" {
		flowFile = s.FlowFile
		p.FlowFileFallback = true
	}
	p.FlowFileName = flowFile
	return p, nil
}

// activeProject returns the active project name of a user directory.
func activeProject(userDir string) (string, error) {
	var pc projectsConfig
	found, err := readJSON(filepath.Join(userDir, ProjectsConfigFile), &pc)
	if err != nil {
		return "", err
	}
	if found {
		if len(pc.Projects) == 0 || pc.ActiveProject == "" {
			return "", ErrNoActiveProject
		}
		return pc.ActiveProject, nil
	}

	var lc legacyConfig
	found, err = readJSON(filepath.Join(userDir, LegacyConfigFile), &lc)
	if err != nil {
		return "", err
	}
	switch {
	case !found:
		return "", ErrNoActiveProject
	case lc.ActiveProject != "":
		return lc.ActiveProject, nil
	case lc.Projects.ActiveProject != "":
		return lc.Projects.ActiveProject, nil
	default:
		return "", ErrNoActiveProject
	}
}

// packageFlowFile returns node-red.settings.flowFile of a project's package.json.
func packageFlowFile(projectPath string) (string, error) {
	var pkg packageJSON
	found, err := readJSON(filepath.Join(projectPath, PackageFile), &pkg)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s has no %s", ErrNotNodeRedProject, projectPath, PackageFile)
	}
	return pkg.NodeRed.Settings.FlowFile, nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// FlowFilePath returns the absolute location of the flow file.
func (p Project) FlowFilePath() string {
	return filepath.Join(p.Path, p.FlowFileName)
}

// SourceRoot returns the destination folder of the source tree.
func (p Project) SourceRoot(folder config.FolderName) string {
	return filepath.Join(p.Path, filepath.FromSlash(string(folder)))
}

// String returns a short description for logs.
func (p Project) String() string {
	if p.IsProject {
		return fmt.Sprintf("project %s (%s)", p.Name, p.Path)
	}
	return p.Path
}
