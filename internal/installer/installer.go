// Package installer runs the package manager's install step in every
// generated workspace concurrently and reports each outcome.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/exec"
	"github.com/simonhull/create-v1-app/pkg/logger"
)

// ArtifactDir must exist in a workspace after a successful install.
const ArtifactDir = "node_modules"

// Job is one install to run.
type Job struct {
	Workspace      workspace.Workspace
	PackageManager string
}

// Outcome is the result of one Job.
type Outcome struct {
	Workspace string
	Path      string
	Success   bool
	Detail    string
	Duration  time.Duration
}

// Options configures an Installer.
type Options struct {
	Jobs        int           // worker count; 0 means one per workspace
	Timeout     time.Duration // per-install limit; 0 means none
	GracePeriod time.Duration // interrupt-to-kill delay on cancellation
	Reporter    Reporter      // progress display; nil shows nothing
	Logger      logger.Logger

	CommandFunc func(name string, args ...string) *osexec.Cmd // Replaces exec.Command
}

// Installer runs installs on a bounded worker pool.
type Installer struct {
	opts Options
	log  logger.Logger
}

// New creates an Installer.
func New(opts Options) *Installer {
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Installer{opts: opts, log: log}
}

type result struct {
	index   int
	outcome Outcome
}

// InstallAll runs "<packageManager> install" in every workspace and waits
// for all of them. A failure never stops the other installs. Outcomes come
// back in workspace order. The error is an AggregateInstallError naming
// every failed workspace, or an InterruptError if ctx was cancelled.
func (i *Installer) InstallAll(ctx context.Context, workspaces []workspace.Workspace, packageManager string) ([]Outcome, error) {
	if _, err := manifest.LookupManager(packageManager); err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, nil
	}

	numWorkers := i.opts.Jobs
	if numWorkers <= 0 || numWorkers > len(workspaces) {
		numWorkers = len(workspaces)
	}

	i.log.Info("Installing dependencies",
		logger.F("workspaces", len(workspaces)),
		logger.F("workers", numWorkers),
		logger.F("package_manager", packageManager))

	names := make([]string, len(workspaces))
	for idx, ws := range workspaces {
		names[idx] = ws.Name
	}
	i.opts.Reporter.Start(names)
	defer i.opts.Reporter.Stop()

	type indexedJob struct {
		index int
		job   Job
	}
	jobs := make(chan indexedJob, len(workspaces))
	results := make(chan result, len(workspaces))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{index: j.index, outcome: i.run(ctx, j.job)}
			}
		}()
	}

	for idx, ws := range workspaces {
		jobs <- indexedJob{index: idx, job: Job{Workspace: ws, PackageManager: packageManager}}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, len(workspaces))
	var failures []*apperr.InstallError
	for r := range results {
		outcomes[r.index] = r.outcome
		i.opts.Reporter.Done(r.outcome)

		if r.outcome.Success {
			i.log.Debug("Install succeeded", logger.F("workspace", r.outcome.Workspace), logger.F("duration", r.outcome.Duration))
			continue
		}
		i.log.Warn("Install failed", logger.F("workspace", r.outcome.Workspace), logger.F("detail", r.outcome.Detail))
		failures = append(failures, &apperr.InstallError{Workspace: r.outcome.Workspace, Detail: r.outcome.Detail})
	}

	if err := ctx.Err(); err != nil {
		return outcomes, &apperr.InterruptError{Err: err}
	}
	if agg := apperr.NewAggregateInstallError(failures); agg != nil {
		return outcomes, agg
	}
	return outcomes, nil
}

// run executes one job. It never returns early because of a sibling.
func (i *Installer) run(ctx context.Context, job Job) Outcome {
	start := time.Now()
	out := i.install(ctx, job)
	out.Duration = time.Since(start)
	return out
}

func (i *Installer) install(ctx context.Context, job Job) Outcome {
	ws := job.Workspace
	out := Outcome{Workspace: ws.Name, Path: ws.DestPath}

	if err := ctx.Err(); err != nil {
		out.Detail = "not started: " + err.Error()
		return out
	}

	ex := exec.NewExecutor(&exec.Options{
		Dir:         ws.DestPath,
		Timeout:     i.opts.Timeout,
		GracePeriod: i.opts.GracePeriod,
		CommandFunc: i.opts.CommandFunc,
	})

	i.log.Debug("Running install", logger.F("workspace", ws.Name), logger.F("dir", ws.DestPath))
	res, err := ex.Capture(ctx, job.PackageManager, "install")
	if err != nil {
		out.Detail = describeFailure(err, res)
		return out
	}

	info, err := os.Stat(filepath.Join(ws.DestPath, ArtifactDir))
	if err != nil || !info.IsDir() {
		out.Detail = fmt.Sprintf("%s not created in %s", ArtifactDir, ws.DestPath)
		return out
	}

	out.Success = true
	return out
}

func describeFailure(err error, res exec.Result) string {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "timed out: " + msg
	}
	if combined := res.Combined(); combined != "" {
		msg += "\n" + indent(combined)
	}
	return msg
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
