package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/simonhull/create-v1-app/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services a project can include",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available services:")
			for _, svc := range workspace.Services {
				fmt.Fprintf(out, "  %s %s\n", nameStyle.Render(fmt.Sprintf("%-10s", svc)), helpStyle.Render(svc.Description()))
			}
		},
	}
}
