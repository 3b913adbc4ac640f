package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/output"
)

// NewFieldsCommand creates the fields command
func NewFieldsCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var mandatory bool

	cmd := &cobra.Command{
		Use:   "fields <module>",
		Short: "List the field layout of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.GetFields(args[0])
				if mandatory {
					req.MandatoryOnly()
				}
				return req.Do(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&mandatory, "mandatory", false, "Only mandatory fields")
	flags.register(cmd)
	return cmd
}
