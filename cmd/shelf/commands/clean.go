package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shelf/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove document snapshots, and the geocoding cache with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Snapshots: true,
				Cache:     all,
			})
		},
	}
	cmd.Flags().Bool("all", false, "Also remove the geocoding cache")
	return cmd
}
