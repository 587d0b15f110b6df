package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/input"
	"github.com/simonhull/create-v1-app/pkg/output"
)

const defaultProjectName = "my-v1-app"

// runInteractive asks for everything "new" takes as arguments, then creates
// the project with the configured defaults for the rest.
func runInteractive(ctx context.Context, e *env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}

	p := input.NewPrompter(e.stdin, e.stdout)
	output.Info("Let's create a new v1 project")

	name := p.Prompt("Project name", defaultProjectName)

	managers := make([]input.Option, len(manifest.Managers))
	defaultIndex := 0
	for i, m := range manifest.Managers {
		managers[i] = input.Option{Value: m.Name, Help: m.Help}
		if m.Name == cfg.PackageManager {
			defaultIndex = i
		}
	}
	pm := p.Select("Package manager", managers, defaultIndex)

	services := make([]input.Option, len(workspace.Services))
	for i, svc := range workspace.Services {
		services[i] = input.Option{Value: string(svc), Help: svc.Description()}
	}
	picked := p.MultiSelect("Services", services)

	summary := fmt.Sprintf("Create %s with %s", name, pm)
	if len(picked) > 0 {
		summary += " and " + strings.Join(picked, ", ")
	}
	if !p.Confirm(summary+"?", true) {
		output.Warn("Aborted")
		return nil
	}

	return e.create(ctx, cfg, createRequest{
		name:           name,
		packageManager: pm,
		services:       picked,
		templates:      cfg.Templates,
		skipInstall:    cfg.Install.Skip,
		gitInit:        cfg.Git.Init,
	})
}
