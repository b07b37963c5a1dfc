package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/shelf/internal/app"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags [endpoint]",
		Short: "List tags and endpoints, or show the references one endpoint provides or invalidates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.TagsOptions{}
			if len(args) == 1 {
				opts.Endpoint = args[0]
			}
			pairs, _ := cmd.Flags().GetStringArray("arg")
			parsed, err := parseArgs(pairs)
			if err != nil {
				return err
			}
			opts.Args = parsed
			opts.Dataset, _ = cmd.Flags().GetString("dataset")
			_, err = c.app.Tags(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringArrayP("arg", "a", nil, "Endpoint argument as key=value (repeatable)")
	cmd.Flags().StringP("dataset", "d", "", "Seed from this dataset instead of the configured one")
	return cmd
}

// parseArgs decodes key=value pairs. Values are YAML scalars, so "2" is a number and "true" a bool.
func parseArgs(pairs []string) (domain.Args, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	args := make(domain.Args, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, zerr.With(domain.ErrInvalidArgument, "arg", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidArgument.Error()), "arg", pair)
		}
		if value == nil {
			value = raw
		}
		args[key] = value
	}
	return args, nil
}
