// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/internal/codec"
	"github.com/HSQIntegrelec/node-red-contrib-flow-splitter/pkg/flownode"
)

// ReadMonolith reads and decodes the flow file. A missing file is reported
// with an error wrapping fs.ErrNotExist.
func (p Project) ReadMonolith() ([]flownode.Node, error) {
	data, err := os.ReadFile(p.FlowFilePath())
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}
	nodes, err := codec.DecodeMonolith(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.FlowFileName, err)
	}
	return nodes, nil
}

// MonolithExists reports whether the flow file is present.
func (p Project) MonolithExists() bool {
	info, err := os.Stat(p.FlowFilePath())
	return err == nil && !info.IsDir()
}

// WriteMonolith replaces the flow file. The content is written to a temp
// file in the same directory and renamed over the target, so the host never
// observes a partially written flow file.
func (p Project) WriteMonolith(nodes []flownode.Node) error {
	data, err := codec.EncodeMonolith(nodes)
	if err != nil {
		return err
	}

	target := p.FlowFilePath()
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create flow file directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".flow-splitter-*.json")
	if err != nil {
		return fmt.Errorf("create temp flow file: %w", err)
	}
	tmpPath := tmp.Name()

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp flow file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp flow file: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("set flow file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("replace flow file: %w", err)
	}
	renamed = true
	return nil
}

// RemoveMonolith deletes the flow file. A missing file is not an error.
func (p Project) RemoveMonolith() error {
	if err := os.Remove(p.FlowFilePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove flow file: %w", err)
	}
	return nil
}
