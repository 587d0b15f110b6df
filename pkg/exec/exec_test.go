package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommand returns a command that re-executes the test binary as a helper process
func mockCommand(name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is the mock command executor
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "no command specified\n")
		os.Exit(1)
	}

	switch args[0] {
	case "echo":
		fmt.Println(strings.Join(args[1:], " "))
		os.Exit(0)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Println(wd)
		os.Exit(0)
	case "env":
		fmt.Println(os.Getenv(args[1]))
		os.Exit(0)
	case "error":
		fmt.Fprintf(os.Stderr, "error occurred\n")
		os.Exit(3)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	case "stubborn":
		signal.Ignore(syscall.SIGINT)
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		os.Exit(1)
	}
}

func TestNewExecutor_Defaults(t *testing.T) {
	executor := NewExecutor(nil)
	assert.NotNil(t, executor)
	assert.Equal(t, os.Stdout, executor.stdout)
	assert.Equal(t, os.Stderr, executor.stderr)
	assert.Equal(t, DefaultGracePeriod, executor.gracePeriod)
	assert.NotNil(t, executor.commandFunc)

	var stdout bytes.Buffer
	executor = NewExecutor(&Options{Stdout: &stdout, Env: []string{"A=1"}, Dir: "/tmp"})
	assert.Equal(t, &stdout, executor.stdout)
	assert.Equal(t, []string{"A=1"}, executor.env)
	assert.Equal(t, "/tmp", executor.dir)
}

func TestExecutor_Run(t *testing.T) {
	var stdout bytes.Buffer
	executor := NewExecutor(&Options{Stdout: &stdout, CommandFunc: mockCommand})

	err := executor.Run(context.Background(), "echo", "hello", "world")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "hello world")
}

func TestExecutor_Capture(t *testing.T) {
	executor := NewExecutor(&Options{CommandFunc: mockCommand})

	res, err := executor.Capture(context.Background(), "error")
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "error occurred")
	assert.Equal(t, "error occurred", res.Combined())
}

func TestExecutor_WithDir(t *testing.T) {
	dir := t.TempDir()
	executor := NewExecutor(&Options{CommandFunc: mockCommand}).WithDir(dir)

	res, err := executor.Capture(context.Background(), "pwd")
	require.NoError(t, err)

	want, _ := os.Stat(dir)
	got, statErr := os.Stat(strings.TrimSpace(res.Stdout))
	require.NoError(t, statErr)
	assert.True(t, os.SameFile(want, got), "command should run in %s, ran in %s", dir, res.Stdout)
}

func TestExecutor_Env(t *testing.T) {
	executor := NewExecutor(&Options{CommandFunc: mockCommand, Env: []string{"CI=true"}})

	res, err := executor.Capture(context.Background(), "env", "CI")
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(res.Stdout))
}

func TestExecutor_CancelInterruptsProcess(t *testing.T) {
	executor := NewExecutor(&Options{CommandFunc: mockCommand, GracePeriod: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := executor.Capture(ctx, "sleep")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second, "interrupt should stop the process before the grace period")
}

func TestExecutor_CancelKillsAfterGracePeriod(t *testing.T) {
	executor := NewExecutor(&Options{CommandFunc: mockCommand, GracePeriod: 300 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := executor.Capture(ctx, "stubborn")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "stubborn process should be killed after the grace period")
}

func TestExecutor_Timeout(t *testing.T) {
	executor := NewExecutor(&Options{CommandFunc: mockCommand, Timeout: 200 * time.Millisecond, GracePeriod: time.Second})

	_, err := executor.Capture(context.Background(), "sleep")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_CommandNotFound(t *testing.T) {
	executor := NewExecutor(&Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	err := executor.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIsCommandNotFound(t *testing.T) {
	assert.False(t, isCommandNotFound(nil))
	assert.True(t, isCommandNotFound(exec.ErrNotFound))
	assert.True(t, isCommandNotFound(fmt.Errorf("exec: \"pnpm\": executable file not found in $PATH")))
	assert.False(t, isCommandNotFound(fmt.Errorf("exit status 1")))
}
