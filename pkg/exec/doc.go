// Package exec runs external commands with context support and graceful
// cancellation.
//
// # Basic Usage
//
//	executor := exec.NewExecutor(&exec.Options{Dir: "acme/apps/web"})
//	res, err := executor.Capture(ctx, "pnpm", "install")
//
// # Cancellation
//
// Commands run in their own process group. When the context is cancelled the
// whole group receives an interrupt first; if it has not exited after the
// grace period it is killed. This lets package managers remove their own
// lock files and partial downloads before the process goes away.
//
// # Testing
//
// Options.CommandFunc replaces exec.Command so tests can substitute a helper
// process (see TestHelperProcess in exec_test.go).
package exec
