// Package materialize turns one workspace of a template tree into files.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/templates"
	"github.com/simonhull/create-v1-app/internal/variant"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/filesystem"
	"github.com/simonhull/create-v1-app/pkg/generator"
	"github.com/simonhull/create-v1-app/pkg/logger"
)

// Options configures a Materializer.
type Options struct {
	DryRun bool
	Writer io.Writer     // receives one line per operation; nil discards
	Logger logger.Logger // nil is silent
}

// Materializer writes workspaces from a template registry. It holds no
// per-run state and may be reused.
type Materializer struct {
	registry *templates.Registry
	opts     Options
	log      logger.Logger
}

// New creates a Materializer over registry.
func New(registry *templates.Registry, opts Options) *Materializer {
	if opts.Writer == nil {
		opts.Writer = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Materializer{registry: registry, opts: opts, log: log}
}

// Materialize plans ws and executes the plan. Every template is rendered
// before the first write, so a render failure leaves nothing behind.
func (m *Materializer) Materialize(ctx context.Context, ws workspace.Workspace, rc templates.RenderContext) error {
	if err := ctx.Err(); err != nil {
		return &apperr.InterruptError{Err: err}
	}

	ops, err := m.Plan(ws, rc)
	if err != nil {
		return fmt.Errorf("workspace %s: %w", ws.Name, err)
	}

	err = generator.Execute(ctx, ops, generator.ExecuteOptions{
		DryRun: m.opts.DryRun,
		Force:  true,
		Writer: m.opts.Writer,
	})
	if err == nil {
		m.log.Debug("Materialized workspace", logger.F("workspace", ws.Name), logger.F("files", len(ops)))
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &apperr.InterruptError{Err: err}
	}
	var opErr *generator.OperationError
	if errors.As(err, &opErr) {
		return fmt.Errorf("workspace %s: %w", ws.Name,
			&apperr.FilesystemError{Op: opErr.Phase, Path: opErr.Op.Target(), Err: opErr.Err})
	}
	return fmt.Errorf("workspace %s: %w", ws.Name, err)
}

// Plan returns the operations that materialize ws, ordered by destination.
// Selector skips and empty renders produce no operation.
func (m *Materializer) Plan(ws workspace.Workspace, rc templates.RenderContext) ([]generator.Operation, error) {
	src := path.Clean(ws.SourcePath)
	opts := templates.WalkOptions
	if ws.IsRoot {
		opts.MaxDepth = 1
	}

	files, err := filesystem.Files(m.registry.FS(), src, opts)
	if err != nil {
		return nil, &apperr.FilesystemError{Op: "walk", Path: src, Err: err}
	}

	log := m.log.WithFields(logger.F("workspace", ws.Name))
	planned := make(map[string]generator.Operation)
	var tmplNames []string

	for _, name := range files {
		rel := relative(src, name)
		if variant.IsTemplate(rel) {
			tmplNames = append(tmplNames, rel)
			continue
		}
		if variant.SkipStatic(rel, rc.PackageManager) {
			log.Debug("Skipping pnpm-only file", logger.F("file", rel))
			continue
		}
		planned[rel] = &generator.CopyFileOp{
			Source:     m.registry.FS(),
			SourcePath: name,
			Path:       destPath(ws, rel),
		}
	}

	for _, g := range variant.GroupNames(tmplNames) {
		choice, ok := variant.SelectGroup(g, rc.PackageManager, ws.IsRoot)
		if !ok {
			log.Debug("No variant selected", logger.F("group", g.Logical))
			continue
		}

		name := path.Join(src, choice.Name)
		out, err := m.registry.Render(name, rc)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(out) == "" {
			log.Debug("Skipping empty template", logger.F("template", name))
			continue
		}

		if _, dup := planned[choice.Dest]; dup {
			log.Debug("Template overrides static file", logger.F("file", choice.Dest))
		}
		log.Debug("Selected template", logger.F("template", name), logger.F("dest", choice.Dest))
		planned[choice.Dest] = &generator.WriteFileOp{
			Path:    destPath(ws, choice.Dest),
			Content: []byte(out),
			Mode:    0644,
		}
	}

	dests := make([]string, 0, len(planned))
	for d := range planned {
		dests = append(dests, d)
	}
	sort.Strings(dests)

	ops := make([]generator.Operation, len(dests))
	for i, d := range dests {
		ops[i] = planned[d]
	}
	return ops, nil
}

func relative(src, name string) string {
	if src == "." {
		return name
	}
	return strings.TrimPrefix(name, src+"/")
}

func destPath(ws workspace.Workspace, rel string) string {
	return filepath.Join(ws.DestPath, filepath.FromSlash(rel))
}
