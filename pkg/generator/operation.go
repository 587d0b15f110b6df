package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Operation represents a file system operation that can be validated and executed.
//
// Validate checks if the operation would succeed without executing it and
// without side effects. force=true skips conflict checks (e.g., file already exists).
//
// Execute performs the actual operation. This should only be called after Validate succeeds.
//
// Description returns a human-readable description for output (e.g., "Create apps/web/package.json (234 bytes)").
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
	Target() string
}

// WriteFileOp creates a file with content, creating parent directories.
//
// Validation behavior:
//   - Rejects a parent path that exists but is not a directory
//   - Checks for file conflicts unless force=true
//   - Allows empty content (zero bytes) but rejects nil content
type WriteFileOp struct {
	Path    string      // File path to create
	Content []byte      // File content (can be empty, must not be nil)
	Mode    fs.FileMode // File permissions (e.g., 0644)
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	return validateTarget(op.Path, force)
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(op.Path, op.Content, modeOrDefault(op.Mode)); err != nil {
		return fmt.Errorf("cannot write %s: %w", op.Path, err)
	}
	return nil
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
}

func (op *WriteFileOp) Target() string { return op.Path }

// CopyFileOp copies a file out of a source filesystem byte for byte.
type CopyFileOp struct {
	Source     fs.FS       // Filesystem holding the source file
	SourcePath string      // Slash-separated path inside Source
	Path       string      // Destination OS path
	Mode       fs.FileMode // Destination permissions; 0 derives them from the source
}

func (op *CopyFileOp) Validate(ctx context.Context, force bool) error {
	info, err := fs.Stat(op.Source, op.SourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", op.SourcePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", op.SourcePath)
	}
	return validateTarget(op.Path, force)
}

func (op *CopyFileOp) Execute(ctx context.Context) error {
	data, err := fs.ReadFile(op.Source, op.SourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", op.SourcePath, err)
	}

	mode := op.Mode
	if mode == 0 {
		mode = 0644
		if info, err := fs.Stat(op.Source, op.SourcePath); err == nil && info.Mode().Perm()&0111 != 0 {
			mode = 0755
		}
	}

	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(op.Path, data, mode); err != nil {
		return fmt.Errorf("cannot copy %s to %s: %w", op.SourcePath, op.Path, err)
	}
	return nil
}

func (op *CopyFileOp) Description() string {
	return fmt.Sprintf("Copy %s -> %s", op.SourcePath, op.Path)
}

func (op *CopyFileOp) Target() string { return op.Path }

// validateTarget walks up from the destination to the first existing ancestor
// and fails if that ancestor is not a directory.
func validateTarget(path string, force bool) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("destination is a directory: %s", path)
		}
		if !force {
			return fmt.Errorf("file already exists: %s", path)
		}
	}

	dir := filepath.Dir(path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("cannot create directory %s: parent is a file", filepath.Dir(path))
			}
			return nil
		}
		// ENOTDIR means a file sits further up; keep walking to find it.
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return fmt.Errorf("cannot stat %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func modeOrDefault(mode fs.FileMode) fs.FileMode {
	if mode == 0 {
		return 0644
	}
	return mode
}
