package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
)

// NewFilesCommand creates the files command group
func NewFilesCommand(w *output.Writer) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage record attachments",
	}
	filesCmd.AddCommand(
		newFilesUploadCommand(w),
		newFilesDownloadCommand(w),
		newFilesDeleteCommand(w),
	)
	return filesCmd
}

func newFilesUploadCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var path, link string

	cmd := &cobra.Command{
		Use:   "upload <module> <id>",
		Short: "Attach a file or link to a record (requires unsafe_allow_write)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (path == "") == (link == "") {
				return errors.New(errors.CodeCfgInvalid, "exactly one of --path or --link is required", nil)
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.UploadFile(args[0]).ID(args[1])
				if path != "" {
					req.FromPath(path)
				} else {
					req.AttachLink(link)
				}
				return req.Do(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Local file to upload")
	cmd.Flags().StringVar(&link, "link", "", "URL to attach instead of a file")
	flags.register(cmd)
	return cmd
}

type downloadResult struct {
	Path       string `json:"path" yaml:"path"`
	Downloaded bool   `json:"downloaded" yaml:"downloaded"`
}

func newFilesDownloadCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var out string

	cmd := &cobra.Command{
		Use:   "download <module> <id>",
		Short: "Download an attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New(errors.CodeCfgInvalid, "--out is required", nil)
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				ok, err := c.DownloadFile(args[0]).ID(args[1]).SaveTo(out).Do(ctx)
				if err != nil {
					return nil, err
				}
				return downloadResult{Path: out, Downloaded: ok}, nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Destination path")
	flags.register(cmd)
	return cmd
}

func newFilesDeleteCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	cmd := &cobra.Command{
		Use:   "delete <module> <id>",
		Short: "Delete an attachment (requires unsafe_allow_write)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				return c.DeleteFile(args[0]).ID(args[1]).Do(ctx)
			})
		},
	}
	flags.register(cmd)
	return cmd
}
