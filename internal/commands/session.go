package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/cleanup"
	"github.com/simonhull/create-v1-app/internal/config"
	"github.com/simonhull/create-v1-app/internal/installer"
	"github.com/simonhull/create-v1-app/internal/scaffold"
	"github.com/simonhull/create-v1-app/internal/templates"
	"github.com/simonhull/create-v1-app/pkg/logger"
	"github.com/simonhull/create-v1-app/pkg/output"
)

// session holds the collaborators of one generating command.
type session struct {
	log        logger.Logger
	cleanup    *cleanup.Manager
	source     *templates.Source
	scaffolder *scaffold.Scaffolder
}

type sessionOptions struct {
	templates   string
	dryRun      bool
	skipInstall bool
}

func (e *env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: e.configFile})
	if err != nil {
		return nil, err
	}
	output.Verbose(cfg.String())
	return cfg, nil
}

func (e *env) newLogger(cfg *config.Config) logger.Logger {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logger.LevelWarn
	}
	if e.verbose {
		level = logger.LevelDebug
	}
	return logger.NewLogger(level, e.stderr).WithFields(logger.F("run", uuid.NewString()))
}

func (e *env) openSession(ctx context.Context, cfg *config.Config, opts sessionOptions) (*session, error) {
	log := e.newLogger(cfg)

	var progress io.Writer
	if e.verbose {
		progress = e.stderr
	}
	src, err := templates.Open(ctx, opts.templates, templates.OpenOptions{Progress: progress})
	if err != nil {
		return nil, err
	}
	reg, err := templates.NewRegistry(src.FS)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	log.Debug("Loaded templates", logger.F("origin", src.Origin), logger.F("count", len(reg.Names())))

	cm := cleanup.NewManager(cfg.CleanupOrder(), log)

	var inst *installer.Installer
	if !opts.skipInstall && !opts.dryRun {
		inst = installer.New(installer.Options{
			Jobs:        cfg.Install.Jobs,
			Timeout:     cfg.Install.Timeout,
			GracePeriod: cfg.Install.GracePeriod,
			Reporter:    e.reporter(),
			Logger:      log,
			CommandFunc: e.command,
		})
	}

	opWriter := io.Discard
	if opts.dryRun || e.verbose {
		opWriter = e.stdout
	}

	return &session{
		log:     log,
		cleanup: cm,
		source:  src,
		scaffolder: scaffold.New(scaffold.Deps{
			Registry:  reg,
			Cleanup:   cm,
			Installer: inst,
			Logger:    log,
			OpWriter:  opWriter,
			DryRun:    opts.dryRun,
		}),
	}, nil
}

func (s *session) close() {
	if err := s.source.Close(); err != nil {
		s.log.Warn("Failed to remove template checkout", logger.F("error", err))
	}
}

// finish reports err and, unless it is an install failure, rolls back
// everything the run recorded.
func (s *session) finish(err error) error {
	if err == nil {
		return nil
	}
	report(err)

	if apperr.TriggersCleanup(err) && s.cleanup.Len() > 0 {
		output.Info("Rolling back changes...")
		if cerr := s.cleanup.Run(); cerr != nil {
			output.Warn(fmt.Sprintf("Cleanup incomplete: %v", cerr))
		}
	}
	return handledError{err: err}
}
