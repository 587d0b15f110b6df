package commands

import (
	"fmt"

	createv1app "github.com/simonhull/create-v1-app"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "create-v1-app v%s\n", createv1app.Version)
		},
	}
}
