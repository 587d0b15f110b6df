package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"os/signal"
	"strings"
	"syscall"

	createv1app "github.com/simonhull/create-v1-app"
	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/installer"
	"github.com/simonhull/create-v1-app/pkg/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// env is the process boundary the commands talk to.
type env struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	reporter   func() installer.Reporter
	command    func(name string, args ...string) *osexec.Cmd // nil runs the real package manager

	// persistent flags
	verbose    bool
	configFile string
}

func defaultEnv() *env {
	return &env{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		reporter:   func() installer.Reporter { return installer.NewReporter(os.Stdout) },
	}
}

// RootCmd creates and returns the root command for the create-v1-app CLI
func RootCmd() *cobra.Command {
	return newRootCmd(defaultEnv())
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-v1-app",
		Short: "Scaffold a v1 monorepo",
		Long: `create-v1-app generates a Turborepo monorepo from templates.

It lays out:
• apps/ (web, api, app) and shared packages/
• optional services such as email, jobs and kv under packages/
• a root package.json pinned to your package manager

Run without arguments in a terminal for an interactive setup.`,
		Version:       createv1app.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(e.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.isTerminal() {
				return cmd.Help()
			}
			return runInteractive(cmd.Context(), e)
		},
	}

	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVar(&e.configFile, "config", "", "Config file (default: ./.create-v1-app.yaml or ~/.create-v1-app.yaml)")

	cmd.AddCommand(newNewCmd(e))
	cmd.AddCommand(newAddCmd(e))
	cmd.AddCommand(newServicesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI until it finishes or is interrupted and returns the
// process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, RootCmd(), os.Args[1:])
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	var handled handledError
	if err != nil && !errors.As(err, &handled) {
		report(err)
	}
	return apperr.ExitCode(err)
}

// handledError marks an error that was already shown to the user.
type handledError struct {
	err error
}

func (e handledError) Error() string { return e.err.Error() }
func (e handledError) Unwrap() error { return e.err }

// report prints err the way its kind calls for.
func report(err error) {
	var agg *apperr.AggregateInstallError
	switch {
	case errors.As(err, &agg):
		for _, f := range agg.Failures {
			summary, details, _ := strings.Cut(f.Detail, "\n")
			output.Error(fmt.Sprintf("install failed in %s: %s", f.Workspace, summary))
			if details != "" {
				output.Verbose(details)
			}
		}
	case apperr.KindOf(err) == apperr.KindInterrupt:
		output.Warn("Interrupted")
	default:
		output.Error(err.Error())
	}
}
