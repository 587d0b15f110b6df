// Package manifest reads and edits the root manifests of a generated project.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/create-v1-app/internal/apperr"
)

// FileName is the root manifest of every generated project.
const FileName = "package.json"

// PackageJSON holds the root manifest fields the tool relies on.
type PackageJSON struct {
	Name           string `json:"name"`
	PackageManager string `json:"packageManager"`
}

// ManagerName returns the package manager without its "@version" suffix.
func (p *PackageJSON) ManagerName() string {
	name, _, _ := strings.Cut(p.PackageManager, "@")
	return name
}

// ManagerVersion returns the part of packageManager after "@", if any.
func (p *PackageJSON) ManagerVersion() string {
	_, version, _ := strings.Cut(p.PackageManager, "@")
	return version
}

// Read loads <projectDir>/package.json. A missing file or a missing name or
// packageManager field is a ConfigError.
func Read(projectDir string) (*PackageJSON, error) {
	path := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.ConfigError{Msg: fmt.Sprintf("%s not found. Are you in a v1 project directory?", path)}
		}
		return nil, &apperr.FilesystemError{Op: "read", Path: path, Err: err}
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, &apperr.ConfigError{Msg: fmt.Sprintf("invalid %s", path), Err: err}
	}

	if strings.TrimSpace(pkg.Name) == "" {
		return nil, apperr.Configf("%s: missing \"name\"", path)
	}
	if pkg.ManagerName() == "" {
		return nil, apperr.Configf("%s: missing \"packageManager\"", path)
	}
	if _, err := LookupManager(pkg.ManagerName()); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// RemoveWorkspace drops entry from the "workspaces" array of
// <projectDir>/package.json. Top-level key order is preserved. It reports
// whether the file changed; a missing manifest or array is not an error.
func RemoveWorkspace(projectDir, entry string) (bool, error) {
	path := filepath.Join(projectDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	fields, err := decodeObject(data)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	changed := false
	for i, f := range fields {
		if f.key != "workspaces" {
			continue
		}
		var list []string
		if err := json.Unmarshal(f.value, &list); err != nil {
			// object form ({"packages": [...]}) or something else; leave it
			return false, nil
		}
		kept := list[:0]
		for _, w := range list {
			if w == entry {
				changed = true
				continue
			}
			kept = append(kept, w)
		}
		if !changed {
			return false, nil
		}
		raw, err := json.Marshal(kept)
		if err != nil {
			return false, err
		}
		fields[i].value = raw
	}
	if !changed {
		return false, nil
	}

	out, err := encodeObject(fields)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

type field struct {
	key   string
	value json.RawMessage
}

func decodeObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func encodeObject(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
