package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/app"
	"github.com/zx06/zcrm/internal/output"
)

// NewSpecCommand creates the spec command
func NewSpecCommand(a *app.App, w *output.Writer) *cobra.Command {
	return newStaticCommand("spec", "Export tool spec for AI/agents", w, func() any { return a.BuildSpec() })
}

// NewVersionCommand creates the version command
func NewVersionCommand(a *app.App, w *output.Writer) *cobra.Command {
	return newStaticCommand("version", "Print version information", w, func() any { return a.VersionInfo() })
}

// newStaticCommand builds a command that needs no CRM session.
func newStaticCommand(use, short string, w *output.Writer, data func() any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, data())
		},
	}
}
