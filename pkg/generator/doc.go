// Package generator provides file operations that can be validated, reported
// and executed as a unit.
//
// # Operations
//
// An Operation is validated first and executed second. Execute validates every
// operation before executing any of them, so a plan with a missing source
// file or a blocked parent directory fails before touching the disk:
//
//	ops := []generator.Operation{
//	    &generator.WriteFileOp{Path: "acme/package.json", Content: data, Mode: 0644},
//	    &generator.CopyFileOp{Source: templates, SourcePath: "turbo.json", Path: "acme/turbo.json"},
//	}
//	err := generator.Execute(ctx, ops, generator.ExecuteOptions{Force: true})
//
// # Dry Run
//
// With DryRun set, operations are validated and described but never executed.
package generator
