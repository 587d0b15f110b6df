// Package workspace resolves the ordered list of template subtrees that make
// up a generated project.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/simonhull/create-v1-app/internal/apperr"
)

// RootName names the root workspace.
const RootName = "root"

// Workspace is one template subtree and the directory it is written to.
type Workspace struct {
	Name       string
	SourcePath string // slash-separated, relative to the template FS root
	DestPath   string // OS path
	IsRoot     bool
}

// conventional lists the application and package directories every template
// tree may provide, in emission order.
var conventional = []struct {
	name string
	dir  string
}{
	{"web", "apps/web"},
	{"api", "apps/api"},
	{"app", "apps/app"},
	{"ui", "packages/ui"},
	{"logger", "packages/logger"},
}

// Resolve returns the root workspace, then every conventional directory
// present in templates, then one workspace per requested service. Unknown or
// missing services are reported before anything is written.
func Resolve(templates fs.FS, projectRoot string, services []string) ([]Workspace, error) {
	svcWorkspaces, err := ResolveServices(templates, projectRoot, services)
	if err != nil {
		return nil, err
	}

	workspaces := []Workspace{{
		Name:       RootName,
		SourcePath: ".",
		DestPath:   projectRoot,
		IsRoot:     true,
	}}

	for _, c := range conventional {
		ok, err := isDir(templates, c.dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		workspaces = append(workspaces, Workspace{
			Name:       c.name,
			SourcePath: c.dir,
			DestPath:   filepath.Join(projectRoot, filepath.FromSlash(c.dir)),
		})
	}

	return append(workspaces, svcWorkspaces...), nil
}

// ResolveServices returns one workspace per requested service, deduplicated
// in request order. Each lands in <projectRoot>/packages/<service>.
func ResolveServices(templates fs.FS, projectRoot string, services []string) ([]Workspace, error) {
	parsed, err := ParseServices(services)
	if err != nil {
		return nil, err
	}

	workspaces := make([]Workspace, 0, len(parsed))
	for _, svc := range parsed {
		src := svc.TemplateDir()
		ok, err := isDir(templates, src)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Configf("service template not found for %s (expected %s/)", svc, src)
		}
		workspaces = append(workspaces, Workspace{
			Name:       string(svc),
			SourcePath: src,
			DestPath:   filepath.Join(projectRoot, filepath.FromSlash(svc.PackageDir())),
		})
	}
	return workspaces, nil
}

func isDir(fsys fs.FS, dir string) (bool, error) {
	info, err := fs.Stat(fsys, path.Clean(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &apperr.FilesystemError{Op: "stat", Path: dir, Err: err}
	}
	return info.IsDir(), nil
}

func (w Workspace) String() string {
	return fmt.Sprintf("%s (%s -> %s)", w.Name, w.SourcePath, w.DestPath)
}
