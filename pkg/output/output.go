// Package output provides styled terminal output for the create-v1-app CLI.
//
// Functions use lipgloss for styling but abstract away the details from callers.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	errOut      io.Writer = os.Stderr
	verboseMode bool
)

// SetVerbose enables or disables verbose output for debugging.
// This should be called by the CLI when the --verbose flag is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verboseMode
}

// SetOutput redirects standard and error output. Nil keeps the current writer.
// Returns a function restoring the previous writers.
func SetOutput(stdout, stderr io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := out, errOut
	if stdout != nil {
		out = stdout
	}
	if stderr != nil {
		errOut = stderr
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		out, errOut = prevOut, prevErr
	}
}

// Success prints a success message with 🚀 emoji and green color.
// Use this for completed operations.
//
// Example:
//
//	output.Success("V1 app created: acme")
func Success(msg string) {
	writeLine(out, successStyle.Render("🚀 "+msg))
}

// Error prints an error message with ❌ emoji and red color to the error writer.
//
// Example:
//
//	output.Error("Failed to create project: permission denied")
func Error(msg string) {
	writeLine(errOut, errorStyle.Render("❌ "+msg))
}

// Warn prints a warning with 🚧 emoji and yellow color to the error writer.
func Warn(msg string) {
	writeLine(errOut, warnStyle.Render("🚧 "+msg))
}

// Info prints an informational message in cyan.
//
// Example:
//
//	output.Info("Next steps:")
func Info(msg string) {
	writeLine(out, infoStyle.Render("ℹ️  "+msg))
}

// Step prints an indented step message in gray.
//
// Example:
//
//	output.Step("cd acme")
//	output.Step("pnpm dev")
func Step(msg string) {
	writeLine(out, stepStyle.Render("   "+msg))
}

// Verbose prints a debug message with 🔍 emoji only if verbose mode is enabled.
func Verbose(msg string) {
	if IsVerbose() {
		writeLine(out, stepStyle.Render("🔍 "+msg))
	}
}

func writeLine(w io.Writer, line string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(w, line)
}
