package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/simonhull/create-v1-app/internal/scaffold"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/simonhull/create-v1-app/pkg/output"
	"github.com/spf13/cobra"
)

func newAddCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add features to an existing v1 project",
	}
	cmd.AddCommand(newAddServiceCmd(e))
	return cmd
}

func newAddServiceCmd(e *env) *cobra.Command {
	var (
		dir          string
		skipInstall  bool
		templatesSrc string
	)

	cmd := &cobra.Command{
		Use:     "service <service>...",
		Aliases: []string{"services"},
		Short:   "Add services to an existing v1 project",
		Long: `Adds one or more services under packages/ of an existing project.
The project name and package manager are read from its package.json.
If anything fails, the partially added services are removed again.

Example:
  create-v1-app add service email kv`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: workspace.Names(workspace.Services),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("templates") {
				templatesSrc = cfg.Templates
			}
			if !cmd.Flags().Changed("skip-install") {
				skipInstall = cfg.Install.Skip
			}

			ctx := cmd.Context()
			s, err := e.openSession(ctx, cfg, sessionOptions{templates: templatesSrc, skipInstall: skipInstall})
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.scaffolder.AddServices(ctx, scaffold.AddOptions{ProjectDir: dir, Services: args})
			if err != nil {
				return s.finish(err)
			}

			names := make([]string, len(res.Workspaces))
			for i, ws := range res.Workspaces {
				names[i] = ws.Name
			}
			output.Success(fmt.Sprintf("Added %s to %s in %s", strings.Join(names, ", "), res.ProjectName, res.Elapsed.Round(time.Millisecond)))
			for _, name := range names {
				output.Step(fmt.Sprintf("import from %q", workspace.Service(name).ImportPath()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Skip installing dependencies")
	cmd.Flags().StringVar(&templatesSrc, "templates", "", "Template source: a directory or a git URL (default: built-in)")

	return cmd
}
