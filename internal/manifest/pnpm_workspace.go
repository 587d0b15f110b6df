package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PnpmWorkspaceFile lists workspace packages for pnpm projects.
const PnpmWorkspaceFile = "pnpm-workspace.yaml"

// RemovePnpmWorkspace drops entry from the "packages" list of
// <projectDir>/pnpm-workspace.yaml, keeping comments and the order of the
// remaining entries. It reports whether the file changed.
func RemovePnpmWorkspace(projectDir, entry string) (bool, error) {
	path := filepath.Join(projectDir, PnpmWorkspaceFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return false, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, nil
	}

	changed := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "packages" {
			continue
		}
		seq := root.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			continue
		}
		kept := seq.Content[:0]
		for _, item := range seq.Content {
			if item.Kind == yaml.ScalarNode && item.Value == entry {
				changed = true
				continue
			}
			kept = append(kept, item)
		}
		seq.Content = kept
	}
	if !changed {
		return false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, err
	}
	return true, nil
}
