package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonhull/create-v1-app/internal/config"
	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/internal/scaffold"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/output"
	"github.com/spf13/cobra"
)

type createRequest struct {
	name           string
	packageManager string
	services       []string
	templates      string
	skipInstall    bool
	gitInit        bool
	dryRun         bool
}

func newNewCmd(e *env) *cobra.Command {
	var req createRequest

	cmd := &cobra.Command{
		Use:   "new <project-name>",
		Short: "Create a new v1 project",
		Long: `Creates a new v1 monorepo with:
• Turborepo and Biome at the root
• apps/web, apps/api and apps/app
• shared packages (ui, logger) and any services you pick

Example:
  create-v1-app new acme --services email,kv --package-manager pnpm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}

			req.name = args[0]
			flags := cmd.Flags()
			if !flags.Changed("package-manager") {
				req.packageManager = cfg.PackageManager
			}
			if !flags.Changed("templates") {
				req.templates = cfg.Templates
			}
			if !flags.Changed("skip-install") {
				req.skipInstall = cfg.Install.Skip
			}
			if !flags.Changed("git") {
				req.gitInit = cfg.Git.Init
			}

			return e.create(cmd.Context(), cfg, req)
		},
	}

	serviceNames := workspace.Names(workspace.Services)
	cmd.Flags().StringSliceVarP(&req.services, "services", "s", nil, "Services to include ("+strings.Join(serviceNames, ", ")+")")
	cmd.Flags().StringVarP(&req.packageManager, "package-manager", "p", manifest.DefaultManager, "Package manager ("+strings.Join(manifest.ManagerNames(), ", ")+")")
	cmd.Flags().BoolVar(&req.skipInstall, "skip-install", false, "Skip installing dependencies")
	cmd.Flags().BoolVar(&req.gitInit, "git", false, "Initialize a git repository")
	cmd.Flags().BoolVar(&req.dryRun, "dry-run", false, "Show the files that would be written without writing them")
	cmd.Flags().StringVar(&req.templates, "templates", "", "Template source: a directory or a git URL (default: built-in)")

	_ = cmd.RegisterFlagCompletionFunc("services", cobra.FixedCompletions(serviceNames, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("package-manager", cobra.FixedCompletions(manifest.ManagerNames(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (e *env) create(ctx context.Context, cfg *config.Config, req createRequest) error {
	s, err := e.openSession(ctx, cfg, sessionOptions{
		templates:   req.templates,
		dryRun:      req.dryRun,
		skipInstall: req.skipInstall,
	})
	if err != nil {
		return err
	}
	defer s.close()

	output.Verbose(fmt.Sprintf("Creating new v1 project: %s", req.name))

	res, err := s.scaffolder.Create(ctx, scaffold.CreateOptions{
		Name:           req.name,
		Services:       req.services,
		PackageManager: req.packageManager,
		GitInit:        req.gitInit,
	})
	if err != nil {
		return s.finish(err)
	}

	if req.dryRun {
		output.Success("Dry run complete, no files were written")
		return nil
	}

	pm := strings.ToLower(req.packageManager)
	output.Success(fmt.Sprintf("Created %s in %s", res.ProjectName, res.Elapsed.Round(time.Millisecond)))
	output.Info("Next steps:")
	output.Step(fmt.Sprintf("cd %s", req.name))
	if req.skipInstall {
		output.Step(pm + " install")
	}
	output.Step(runScript(pm, "dev"))
	return nil
}

// runScript is the command that runs a package.json script.
func runScript(pm, script string) string {
	if pm == "npm" {
		return "npm run " + script
	}
	return pm + " " + script
}
