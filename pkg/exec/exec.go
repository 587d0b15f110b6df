package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultGracePeriod is how long an interrupted command may take to exit
// before it is killed.
const DefaultGracePeriod = 5 * time.Second

// Executor runs external commands
type Executor struct {
	stdout      io.Writer
	stderr      io.Writer
	env         []string
	dir         string
	timeout     time.Duration
	gracePeriod time.Duration

	// For mocking in tests
	commandFunc func(name string, args ...string) *exec.Cmd
}

// Options configures command execution
type Options struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Env         []string      // Additional environment variables
	Dir         string        // Working directory
	Timeout     time.Duration // Command timeout (0 = none)
	GracePeriod time.Duration // Interrupt-to-kill delay on cancellation (0 = DefaultGracePeriod)

	CommandFunc func(name string, args ...string) *exec.Cmd // Replaces exec.Command
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined, trimmed of surrounding whitespace.
func (r Result) Combined() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(r.Stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// NewExecutor creates an executor with sensible defaults
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}

	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		timeout:     opts.Timeout,
		gracePeriod: opts.GracePeriod,
		commandFunc: opts.CommandFunc,
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	if e.gracePeriod <= 0 {
		e.gracePeriod = DefaultGracePeriod
	}
	if e.commandFunc == nil {
		e.commandFunc = exec.Command
	}
	return e
}

// WithDir returns a copy of the executor that runs commands in dir.
func (e *Executor) WithDir(dir string) *Executor {
	c := *e
	c.dir = dir
	return &c
}

// Run executes a command, streaming output to the executor's writers.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s cancelled: %w", name, err)
	}

	cmd := e.commandFunc(name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	setPlatformProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		if isCommandNotFound(err) {
			return enhanceError(err, name)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		e.stop(cmd, errCh)
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return nil
	}
}

// Capture executes a command and returns its output instead of streaming it.
// The returned Result is populated even when err is non-nil.
func (e *Executor) Capture(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer

	c := *e
	c.stdout = &stdout
	c.stderr = &stderr

	err := c.Run(ctx, name, args...)

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		res.ExitCode = -1
	}
	return res, err
}

// stop interrupts the process group and kills it if it outlives the grace period.
func (e *Executor) stop(cmd *exec.Cmd, errCh <-chan error) {
	_ = interruptProcessGroup(cmd)

	timer := time.NewTimer(e.gracePeriod)
	defer timer.Stop()

	select {
	case <-errCh:
	case <-timer.C:
		_ = killProcessGroup(cmd)
		<-errCh
	}
}

// isCommandNotFound checks if an error indicates a command was not found
func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(err.Error(), "command not found")
}

// enhanceError adds helpful message for missing commands
func enhanceError(err error, cmd string) error {
	return fmt.Errorf("%w\n💡 Command '%s' not found. Please install it and try again", err, cmd)
}
