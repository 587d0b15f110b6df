package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // Where to write output (defaults to os.Stdout)
}

// OperationError reports which operation failed and in which phase.
type OperationError struct {
	Phase string // "validate" or "execute"
	Op    Operation
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Execute runs operations with validation. Context cancellation is checked
// before each operation; operations already executed are left in place.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	// Phase 1: Validate all operations
	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return &OperationError{Phase: "validate", Op: op, Err: err}
		}
	}

	// Phase 2: Execute or report
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return &OperationError{Phase: "execute", Op: op, Err: err}
		}
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}

	return nil
}
