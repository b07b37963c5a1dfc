package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) newGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Geocode(cmd.Context(), strings.Join(args, " "))
			return err
		},
	}
}
