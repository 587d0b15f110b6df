// Package apperr defines the closed set of errors create-v1-app reports.
//
// Every error the driver can surface is one of the concrete types below.
// Callers detect the kind with KindOf or errors.As and handle it with an
// exhaustive type switch over Error.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind names one member of the error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindRender
	KindFilesystem
	KindInstall
	KindAggregateInstall
	KindInterrupt
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindFilesystem:
		return "filesystem"
	case KindInstall:
		return "install"
	case KindAggregateInstall:
		return "aggregate install"
	case KindInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Error is implemented only by the types in this package.
type Error interface {
	error
	Kind() Kind
	sealed()
}

// ConfigError reports an unknown service, unsupported package manager, or a
// malformed manifest.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Kind() Kind    { return KindConfig }
func (*ConfigError) sealed()         {}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// RenderError reports a template that failed to evaluate.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
func (e *RenderError) Kind() Kind    { return KindRender }
func (*RenderError) sealed()         {}

// FilesystemError reports an I/O failure on Path.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }
func (e *FilesystemError) Kind() Kind    { return KindFilesystem }
func (*FilesystemError) sealed()         {}

// InstallError reports one workspace whose install failed.
type InstallError struct {
	Workspace string
	Detail    string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install failed in %s: %s", e.Workspace, e.Detail)
}

func (e *InstallError) Kind() Kind { return KindInstall }
func (*InstallError) sealed()      {}

// AggregateInstallError lists every workspace whose install failed.
type AggregateInstallError struct {
	Failures []*InstallError
}

func (e *AggregateInstallError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Workspace
	}
	return fmt.Sprintf("install failed in %d workspace(s): %s", len(e.Failures), strings.Join(names, ", "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateInstallError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

func (e *AggregateInstallError) Kind() Kind { return KindAggregateInstall }
func (*AggregateInstallError) sealed()      {}

// NewAggregateInstallError returns nil when failures is empty.
func NewAggregateInstallError(failures []*InstallError) *AggregateInstallError {
	if len(failures) == 0 {
		return nil
	}
	sorted := append([]*InstallError(nil), failures...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Workspace < sorted[j].Workspace })
	return &AggregateInstallError{Failures: sorted}
}

// InterruptError reports that the user asked the run to stop.
type InterruptError struct {
	Err error
}

func (e *InterruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interrupted: %v", e.Err)
	}
	return "interrupted"
}

func (e *InterruptError) Unwrap() error { return e.Err }
func (e *InterruptError) Kind() Kind    { return KindInterrupt }
func (*InterruptError) sealed()         {}

// KindOf returns the kind of the outermost taxonomy error in err's chain.
// A bare context cancellation counts as an interrupt.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	if errors.Is(err, context.Canceled) {
		return KindInterrupt
	}
	return KindUnknown
}

// Exit codes returned by the CLI.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInterrupt = 130
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch KindOf(err) {
	case KindUnknown:
		if err == nil {
			return ExitOK
		}
		return ExitFailure
	case KindInterrupt:
		return ExitInterrupt
	default:
		return ExitFailure
	}
}

// TriggersCleanup reports whether err should roll back recorded side effects.
// Install failures leave the generated tree in place.
func TriggersCleanup(err error) bool {
	if err == nil {
		return false
	}
	var e Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.(type) {
	case *InstallError, *AggregateInstallError:
		return false
	case *ConfigError, *RenderError, *FilesystemError, *InterruptError:
		return true
	default:
		return true
	}
}
