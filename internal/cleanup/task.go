package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/filesystem"
	"github.com/simonhull/create-v1-app/pkg/logger"
)

// Task is a compensating action. The set of tasks is closed: RemoveDirectory
// and RemoveService.
type Task interface {
	run(log logger.Logger) error
	String() string
	task()
}

// RemoveDirectory deletes Path and everything under it.
type RemoveDirectory struct {
	Path string
}

func (RemoveDirectory) task() {}

func (t RemoveDirectory) String() string { return "remove directory " + t.Path }

func (t RemoveDirectory) run(log logger.Logger) error {
	if _, err := os.Lstat(t.Path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(t.Path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", t.Path, err)
	}
	log.Debug("Removed directory", logger.F("path", t.Path))
	return nil
}

// RemoveService undoes adding Service to the project at ProjectDir: its
// package directory, its workspace entries and its imports.
type RemoveService struct {
	ProjectDir string
	Service    workspace.Service
}

func (RemoveService) task() {}

func (t RemoveService) String() string {
	return fmt.Sprintf("remove service %s from %s", t.Service, t.ProjectDir)
}

func (t RemoveService) run(log logger.Logger) error {
	log = log.WithFields(logger.F("service", string(t.Service)))

	dir := filepath.Join(t.ProjectDir, filepath.FromSlash(t.Service.PackageDir()))
	if err := (RemoveDirectory{Path: dir}).run(log); err != nil {
		return err
	}

	var errs []error
	entry := t.Service.PackageDir()
	if changed, err := manifest.RemoveWorkspace(t.ProjectDir, entry); err != nil {
		errs = append(errs, fmt.Errorf("updating %s: %w", manifest.FileName, err))
	} else if changed {
		log.Debug("Updated root package.json")
	}
	if changed, err := manifest.RemovePnpmWorkspace(t.ProjectDir, entry); err != nil {
		errs = append(errs, fmt.Errorf("updating %s: %w", manifest.PnpmWorkspaceFile, err))
	} else if changed {
		log.Debug("Updated pnpm-workspace.yaml")
	}
	if err := scrubReferences(t.ProjectDir, t.Service, log); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var sourceExts = map[string]bool{".ts": true, ".tsx": true, ".js": true, ".jsx": true}

// referencePattern matches whole lines importing or using the service package.
func referencePattern(svc workspace.Service) *regexp.Regexp {
	pkg := regexp.QuoteMeta(svc.ImportPath())
	return regexp.MustCompile(`^\s*(import\b.*\bfrom\s*["']` + pkg + `(/[^"']*)?["'].*|import\s*["']` + pkg + `(/[^"']*)?["'].*|use\b.*` + pkg + `\b.*)$`)
}

func scrubReferences(projectDir string, svc workspace.Service, log logger.Logger) error {
	pattern := referencePattern(svc)
	var errs []error

	err := filesystem.WalkWithDefaults(projectDir, func(path string, d fs.DirEntry) error {
		if !d.Type().IsRegular() || !sourceExts[filepath.Ext(path)] {
			return nil
		}
		changed, err := scrubFile(path, pattern)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if changed {
			log.Debug("Removed service references", logger.F("file", path))
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("scanning %s: %w", projectDir, err))
	}
	return errors.Join(errs...)
}

func scrubFile(path string, pattern *regexp.Regexp) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	// lines keep their own terminator so CRLF files stay CRLF
	var b strings.Builder
	changed := false
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		if pattern.MatchString(strings.TrimRight(line, "\r\n")) {
			changed = true
			continue
		}
		b.WriteString(line)
	}
	if !changed {
		return false, nil
	}

	out := b.String()
	if !strings.HasSuffix(string(data), "\n") {
		out = strings.TrimSuffix(strings.TrimSuffix(out, "\n"), "\r")
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}
