package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shelf/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against the data layer",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			dataset, _ := cmd.Flags().GetString("dataset")
			fresh, _ := cmd.Flags().GetBool("fresh")
			noSave, _ := cmd.Flags().GetBool("no-save")
			watch, _ := cmd.Flags().GetBool("watch")
			inspect, _ := cmd.Flags().GetBool("inspect")
			mode, _ := cmd.Flags().GetString("output-mode")
			if ci, _ := cmd.Flags().GetBool("ci"); ci {
				mode = "linear"
			}
			_, err := c.app.Run(cmd.Context(), args[0], app.RunOptions{
				Dataset:    dataset,
				Fresh:      fresh,
				NoSave:     noSave,
				Watch:      watch,
				Inspect:    inspect,
				OutputMode: mode,
			})
			return err
		},
	}
	cmd.Flags().StringP("dataset", "d", "", "Seed from this dataset instead of the configured one")
	cmd.Flags().Bool("fresh", false, "Seed from the dataset even when a snapshot exists")
	cmd.Flags().Bool("no-save", false, "Do not write a snapshot after the run")
	cmd.Flags().BoolP("watch", "w", false, "Reload the dataset on change and invalidate every entry")
	cmd.Flags().BoolP("inspect", "i", false, "Keep the dashboard open after the run (prevents auto-exit)")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, linear")
	cmd.Flags().Bool("ci", false, "Use linear output (same as --output-mode=linear)")
	return cmd
}
