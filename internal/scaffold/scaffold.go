// Package scaffold drives project generation: resolve workspaces, write them
// while recording how to undo it, optionally init git, then install.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/cleanup"
	"github.com/simonhull/create-v1-app/internal/installer"
	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/internal/materialize"
	"github.com/simonhull/create-v1-app/internal/templates"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/logger"
	"github.com/simonhull/create-v1-app/pkg/output"
)

// Deps are the collaborators a Scaffolder works with.
type Deps struct {
	Registry  *templates.Registry
	Cleanup   *cleanup.Manager
	Installer *installer.Installer // nil skips the install phase
	Logger    logger.Logger
	OpWriter  io.Writer // one line per file written; nil discards
	DryRun    bool
}

// Scaffolder creates projects and adds services to them.
type Scaffolder struct {
	registry     *templates.Registry
	cleanup      *cleanup.Manager
	installer    *installer.Installer
	materializer *materialize.Materializer
	log          logger.Logger
	dryRun       bool
}

// New creates a Scaffolder.
func New(d Deps) *Scaffolder {
	log := d.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	cm := d.Cleanup
	if cm == nil {
		cm = cleanup.NewManager(cleanup.Reverse, log)
	}
	return &Scaffolder{
		registry:  d.Registry,
		cleanup:   cm,
		installer: d.Installer,
		materializer: materialize.New(d.Registry, materialize.Options{
			DryRun: d.DryRun,
			Writer: d.OpWriter,
			Logger: log,
		}),
		log:    log,
		dryRun: d.DryRun,
	}
}

// CreateOptions describes a new project.
type CreateOptions struct {
	Name           string // project directory; its base name is the project name
	Services       []string
	PackageManager string
	GitInit        bool
}

// AddOptions describes services to add to an existing project.
type AddOptions struct {
	ProjectDir string
	Services   []string
}

// Result summarizes a run.
type Result struct {
	ProjectName string
	ProjectDir  string
	Workspaces  []workspace.Workspace
	Outcomes    []installer.Outcome
	Elapsed     time.Duration
}

// Create generates a new project. On error the caller decides whether to
// run the cleanup manager; see apperr.TriggersCleanup.
func (s *Scaffolder) Create(ctx context.Context, opts CreateOptions) (*Result, error) {
	start := time.Now()

	pm, err := manifest.LookupManager(opts.PackageManager)
	if err != nil {
		return nil, err
	}

	projectDir, projectName, err := projectPath(opts.Name)
	if err != nil {
		return nil, err
	}

	services, err := workspace.ParseServices(opts.Services)
	if err != nil {
		return nil, err
	}

	workspaces, err := workspace.Resolve(s.registry.FS(), projectDir, opts.Services)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logger.F("project", projectName))
	log.Debug("Creating new app",
		logger.F("services", len(services)),
		logger.F("package_manager", pm.Name),
		logger.F("workspaces", len(workspaces)))

	if err := s.prepareProjectDir(projectDir); err != nil {
		return nil, err
	}

	rc := templates.NewRenderContext(projectName, pm.Name, workspace.Names(services))
	res := &Result{ProjectName: projectName, ProjectDir: projectDir, Workspaces: workspaces}

	total := s.totalSteps(len(workspaces))
	if err := s.materializeAll(ctx, workspaces, rc, total); err != nil {
		return res, err
	}

	if opts.GitInit {
		if err := s.gitInit(projectDir); err != nil {
			return res, err
		}
	}

	res.Outcomes, err = s.install(ctx, workspaces, pm.Name, total)
	res.Elapsed = time.Since(start)
	return res, err
}

// AddServices materializes services into the project at opts.ProjectDir,
// reading the project name and package manager from its package.json.
func (s *Scaffolder) AddServices(ctx context.Context, opts AddOptions) (*Result, error) {
	start := time.Now()

	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, &apperr.FilesystemError{Op: "resolve", Path: opts.ProjectDir, Err: err}
	}

	pkg, err := manifest.Read(projectDir)
	if err != nil {
		return nil, err
	}

	workspaces, err := workspace.ResolveServices(s.registry.FS(), projectDir, opts.Services)
	if err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, apperr.Configf("no services given")
	}

	for _, ws := range workspaces {
		if _, err := os.Stat(ws.DestPath); err == nil {
			return nil, apperr.Configf("service %s already exists at %s", ws.Name, ws.DestPath)
		}
	}

	// templates see every service the project will have, old and new
	all := existingServices(projectDir)
	for _, ws := range workspaces {
		all = append(all, workspace.Service(ws.Name))
	}
	rc := templates.NewRenderContext(pkg.Name, pkg.ManagerName(), workspace.Names(all))
	if v := pkg.ManagerVersion(); v != "" {
		rc.PackageManagerVersion = v
	}

	s.log.Debug("Adding services",
		logger.F("project", pkg.Name),
		logger.F("services", len(workspaces)),
		logger.F("package_manager", pkg.ManagerName()))

	res := &Result{ProjectName: pkg.Name, ProjectDir: projectDir, Workspaces: workspaces}
	total := s.totalSteps(len(workspaces))

	for i, ws := range workspaces {
		if !s.dryRun {
			s.cleanup.Record(cleanup.RemoveService{ProjectDir: projectDir, Service: workspace.Service(ws.Name)})
		}
		output.Info(fmt.Sprintf("[%d/%d] Adding service: %s", i+1, total, ws.Name))
		if err := s.materializer.Materialize(ctx, ws, rc); err != nil {
			return res, err
		}
	}

	res.Outcomes, err = s.install(ctx, workspaces, pkg.ManagerName(), total)
	res.Elapsed = time.Since(start)
	return res, err
}

func (s *Scaffolder) totalSteps(workspaces int) int {
	if s.installer != nil && !s.dryRun {
		return workspaces + 1
	}
	return workspaces
}

func (s *Scaffolder) materializeAll(ctx context.Context, workspaces []workspace.Workspace, rc templates.RenderContext, total int) error {
	for i, ws := range workspaces {
		output.Info(fmt.Sprintf("[%d/%d] Processing workspace: %s", i+1, total, ws.Name))
		if err := s.materializer.Materialize(ctx, ws, rc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scaffolder) install(ctx context.Context, workspaces []workspace.Workspace, pm string, total int) ([]installer.Outcome, error) {
	if s.installer == nil || s.dryRun {
		return nil, nil
	}
	output.Info(fmt.Sprintf("[%d/%d] Installing dependencies with %s", total, total, pm))
	return s.installer.InstallAll(ctx, workspaces, pm)
}

// prepareProjectDir refuses to generate into a non-empty directory, so
// rolling back can never delete files the user already had.
func (s *Scaffolder) prepareProjectDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return apperr.Configf("%s already exists and is not a directory", dir)
	case err == nil:
		entries, err := os.ReadDir(dir)
		if err != nil {
			return &apperr.FilesystemError{Op: "read", Path: dir, Err: err}
		}
		if len(entries) > 0 {
			return apperr.Configf("directory %s already exists and is not empty", dir)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return &apperr.FilesystemError{Op: "stat", Path: dir, Err: err}
	}

	if s.dryRun {
		return nil
	}

	s.cleanup.Record(cleanup.RemoveDirectory{Path: dir})
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &apperr.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

func (s *Scaffolder) gitInit(dir string) error {
	if s.dryRun {
		return nil
	}
	_, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		return &apperr.FilesystemError{Op: "git init", Path: dir, Err: err}
	}
	s.log.Debug("Initialized git repository", logger.F("dir", dir))
	return nil
}

// projectPath returns the absolute project directory and the project name.
func projectPath(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperr.Configf("project name is required")
	}
	dir, err := filepath.Abs(name)
	if err != nil {
		return "", "", &apperr.FilesystemError{Op: "resolve", Path: name, Err: err}
	}
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return "", "", apperr.Configf("invalid project name %q", name)
	}
	return dir, base, nil
}

// existingServices lists the known services already present in packages/.
func existingServices(projectDir string) []workspace.Service {
	var out []workspace.Service
	for _, svc := range workspace.Services {
		if info, err := os.Stat(filepath.Join(projectDir, filepath.FromSlash(svc.PackageDir()))); err == nil && info.IsDir() {
			out = append(out, svc)
		}
	}
	return out
}
