package filesystem

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are common directories to skip during traversal
var DefaultIgnoreDirs = []string{
	"node_modules", ".git", ".svn", ".hg",
	".next", ".turbo", "dist", "build",
	".idea", ".vscode", ".vs",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs       []string // Directories to skip (default: DefaultIgnoreDirs)
	NoDefaultIgnores bool     // Use only IgnoreDirs, even when empty
	IgnorePatterns   []string // File patterns to skip (e.g., "*.tmp")
	IncludeHidden    bool     // Include hidden files/dirs (default: false)
	MaxDepth         int      // 0 means unlimited; 1 means immediate children only
}

func (o WalkOptions) ignoreSet() map[string]bool {
	dirs := o.IgnoreDirs
	if len(dirs) == 0 && !o.NoDefaultIgnores {
		dirs = DefaultIgnoreDirs
	}
	set := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		set[d] = true
	}
	return set
}

// WalkFS traverses fsys starting at root with configurable ignore rules.
// Paths passed to the visitor are slash-separated fs.FS paths. The root
// itself is not passed to the visitor.
func WalkFS(fsys fs.FS, root string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.ignoreSet()
	rootDepth := depth(root)

	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		name := d.Name()

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() && ignoreDirs[name] {
			return fs.SkipDir
		}

		if opts.MaxDepth > 0 && depth(p)-rootDepth > opts.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			for _, pattern := range opts.IgnorePatterns {
				if matched, _ := path.Match(pattern, name); matched {
					return nil
				}
			}
		}

		if err := visitor(p, d); err != nil {
			return err
		}

		// Directories at the depth limit are visited but not descended into.
		if d.IsDir() && opts.MaxDepth > 0 && depth(p)-rootDepth == opts.MaxDepth {
			return fs.SkipDir
		}
		return nil
	})
}

// Walk traverses an OS directory tree. Paths passed to the visitor are OS
// paths rooted at rootPath.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	return WalkFS(os.DirFS(rootPath), ".", opts, func(p string, d fs.DirEntry) error {
		return visitor(filepath.Join(rootPath, filepath.FromSlash(p)), d)
	})
}

// WalkWithDefaults walks a directory tree with default ignore patterns.
func WalkWithDefaults(rootPath string, visitor func(path string, d fs.DirEntry) error) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}

// Files returns every regular file under root in fsys, in lexical order.
func Files(fsys fs.FS, root string, opts WalkOptions) ([]string, error) {
	var files []string
	err := WalkFS(fsys, root, opts, func(p string, d fs.DirEntry) error {
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func depth(p string) int {
	p = path.Clean(p)
	if p == "." {
		return 0
	}
	return strings.Count(p, "/") + 1
}
