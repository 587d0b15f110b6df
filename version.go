// Package createv1app holds build metadata for the create-v1-app CLI.
package createv1app

// Version is the CLI version, overridden at build time with -ldflags.
var Version = "0.1.0"
