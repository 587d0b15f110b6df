// Package output prints the lines a user reads: results, next steps and
// errors. Engine tracing belongs in package logger instead.
//
//	output.Info("[1/4] Processing workspace: root")
//	output.Success("Created acme in 1.2s")
//	output.Step("cd acme")
//
// Error and Warn go to the error writer; everything else to standard output.
// Verbose lines appear only after SetVerbose(true). Tests redirect both
// writers with SetOutput.
package output
