package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Chauhan-saab2006/music--app/internal/app"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := app.GetVersionInfo()
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, info.String())
				return
			}
			fmt.Fprintln(out, info.FullString())
			fmt.Fprintf(out, "  go version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  platform:   %s\n", info.Platform)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version")
	return cmd
}
