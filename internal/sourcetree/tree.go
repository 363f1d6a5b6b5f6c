// SPDX-License-Identifier: MPL-2.0

package sourcetree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/codec"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flowset"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/platform"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

const (
	// DirPages holds one file per tab.
	DirPages = "tabs"
	// DirTemplates holds one file per subflow.
	DirTemplates = "subflows"
	// DirSharedConfigs holds one file per global config node.
	DirSharedConfigs = "config-nodes"

	// CodeUnreadableFile reports a group file that could not be read or decoded.
	CodeUnreadableFile = "unreadable_file"
	// CodeEmptyFile reports a group file holding no nodes.
	CodeEmptyFile = "empty_file"
	// CodeMisplacedGroup reports a group file whose first node belongs to another kind.
	CodeMisplacedGroup = "misplaced_group"
)

var (
	// ErrEmptyFileName is returned when a group has no usable file name.
	ErrEmptyFileName = errors.New("group has an empty file name")
	// ErrDuplicateFileName is returned when two groups of a kind map to one file.
	ErrDuplicateFileName = errors.New("groups share a file name")
)

type (
	// Tree is a source tree rooted at a destination folder, using one codec.
	Tree struct {
		root   string
		codec  codec.Codec
		logger *log.Logger
	}

	// ReadResult is the FlowSet read from a tree plus the files that were skipped.
	ReadResult struct {
		Set         flowset.FlowSet
		Diagnostics []flowset.Diagnostic
		// Files counts the group files that were loaded.
		Files int
	}
)

// New returns a Tree rooted at root. A nil logger discards output.
func New(root string, c codec.Codec, logger *log.Logger) *Tree {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tree{root: root, codec: c, logger: logger}
}

// KindDir returns the directory name of a group kind.
func KindDir(kind flownode.Kind) (string, error) {
	switch kind {
	case flownode.KindPage:
		return DirPages, nil
	case flownode.KindTemplate:
		return DirTemplates, nil
	case flownode.KindSharedConfig:
		return DirSharedConfigs, nil
	default:
		return "", &flownode.InvalidKindError{Value: kind}
	}
}

// FileName returns the file a group is stored in.
func FileName(g flowset.Group, ext string) (string, error) {
	if g.NormalizedName == "" {
		return "", fmt.Errorf("%w: group %q", ErrEmptyFileName, g.ID)
	}
	return platform.PortableFileStem(g.NormalizedName) + "." + ext, nil
}

// Root returns the destination folder.
func (t *Tree) Root() string { return t.root }

// Codec returns the codec used for group files.
func (t *Tree) Codec() codec.Codec { return t.codec }

// Ensure creates the root and the kind directories.
func (t *Tree) Ensure() error {
	for _, kind := range flownode.GroupKinds() {
		dir, _ := KindDir(kind)
		if err := os.MkdirAll(filepath.Join(t.root, dir), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Write replaces the group files of the tree with the groups of set. Files
// of the other encoding are left alone. File names are checked before
// anything is removed.
func (t *Tree) Write(set flowset.FlowSet) error {
	planned := make(map[flownode.Kind]map[string]flowset.Group, 3)
	for _, kind := range flownode.GroupKinds() {
		files := make(map[string]flowset.Group)
		for _, g := range set.Groups(kind) {
			name, err := FileName(g, t.codec.Ext())
			if err != nil {
				return err
			}
			if other, dup := files[name]; dup {
				return fmt.Errorf("%w: %q and %q both map to %s", ErrDuplicateFileName, other.ID, g.ID, name)
			}
			files[name] = g
		}
		planned[kind] = files
	}

	if err := t.Ensure(); err != nil {
		return err
	}

	for _, kind := range flownode.GroupKinds() {
		dir, _ := KindDir(kind)
		if err := t.clear(dir); err != nil {
			return err
		}
		for name, g := range planned[kind] {
			data, err := t.codec.Encode(g.Content)
			if err != nil {
				return fmt.Errorf("encode group %q: %w", g.ID, err)
			}
			if err := os.WriteFile(filepath.Join(t.root, dir, name), data, 0o644); err != nil {
				return fmt.Errorf("write group %q: %w", g.ID, err)
			}
			t.logger.Debug("wrote group", "kind", kind, "id", g.ID, "file", path.Join(dir, name), "nodes", len(g.Content))
		}
	}
	return nil
}

// Read loads every group file of the tree. Unreadable and empty files are
// skipped and reported; a missing tree reads as an empty set.
func (t *Tree) Read() (ReadResult, error) {
	var res ReadResult
	for _, kind := range flownode.GroupKinds() {
		dir, _ := KindDir(kind)
		files, err := t.files(dir)
		if err != nil {
			return ReadResult{}, err
		}
		for _, name := range files {
			rel := path.Join(dir, name)
			g, diags, ok := t.readGroup(kind, rel)
			res.Diagnostics = append(res.Diagnostics, diags...)
			if !ok {
				continue
			}
			if err := res.Set.Append(kind, g); err != nil {
				return ReadResult{}, err
			}
			res.Files++
		}
	}
	return res, nil
}

// Exists reports whether the tree holds at least one group file.
func (t *Tree) Exists() (bool, error) {
	for _, kind := range flownode.GroupKinds() {
		dir, _ := KindDir(kind)
		files, err := t.files(dir)
		if err != nil {
			return false, err
		}
		if len(files) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tree) readGroup(kind flownode.Kind, rel string) (flowset.Group, []flowset.Diagnostic, bool) {
	data, err := os.ReadFile(filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return flowset.Group{}, []flowset.Diagnostic{fileDiagnostic(flowset.SeverityError, CodeUnreadableFile, rel, err.Error())}, false
	}
	nodes, err := t.codec.Decode(data)
	if err != nil {
		return flowset.Group{}, []flowset.Diagnostic{fileDiagnostic(flowset.SeverityError, CodeUnreadableFile, rel, err.Error())}, false
	}

	var diags []flowset.Diagnostic
	content := make([]flownode.Node, 0, len(nodes))
	for i, n := range nodes {
		if n == nil {
			diags = append(diags, fileDiagnostic(flowset.SeverityWarning, flowset.CodeNullNode, rel,
				fmt.Sprintf("element %d is null and was skipped", i)))
			continue
		}
		content = append(content, n)
	}
	if len(content) == 0 {
		diags = append(diags, fileDiagnostic(flowset.SeverityWarning, CodeEmptyFile, rel, "file holds no nodes"))
		return flowset.Group{}, diags, false
	}

	defining := content[0]
	if got := flownode.Classify(defining); got != kind {
		diags = append(diags, flowset.Diagnostic{
			Severity: flowset.SeverityWarning,
			Code:     CodeMisplacedGroup,
			Message:  fmt.Sprintf("first node is a %s, expected a %s", got, kind),
			NodeID:   defining.ID(),
			File:     rel,
		})
	}

	name := flowset.DisplayName(kind, defining)
	return flowset.Group{
		ID:             defining.ID(),
		Name:           name,
		NormalizedName: flowset.Normalize(name),
		Content:        content,
	}, diags, true
}

// files lists the group files of a kind directory in lexical order.
func (t *Tree) files(dir string) ([]string, error) {
	abs := filepath.Join(t.root, dir)
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	matches, err := doublestar.Glob(os.DirFS(abs), "*."+t.codec.Ext(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	slices.Sort(matches)
	return matches, nil
}

func (t *Tree) clear(dir string) error {
	files, err := t.files(dir)
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := os.Remove(filepath.Join(t.root, dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path.Join(dir, name), err)
		}
	}
	return nil
}

func fileDiagnostic(sev flowset.Severity, code, rel, msg string) flowset.Diagnostic {
	return flowset.Diagnostic{Severity: sev, Code: code, Message: msg, File: rel}
}
