package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
	"github.com/zx06/zcrm/internal/zoho"
)

// NewRecordsCommand creates the records command group
func NewRecordsCommand(w *output.Writer) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Read and write module records",
	}

	recordsCmd.AddCommand(
		newRecordsListCommand(w),
		newRecordsGetCommand(w),
		newRecordsSearchCommand(w),
		newRecordsRelatedCommand(w),
		newRecordsInsertCommand(w),
		newRecordsUpdateCommand(w),
		newRecordsUpdateRelatedCommand(w),
		newRecordsDeleteCommand(w),
		newRecordsDeletedCommand(w),
	)
	return recordsCmd
}

type rangeFlags struct {
	from, to int
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&r.from, "from", 0, "First row index (1-based, 0 = server default)")
	cmd.Flags().IntVar(&r.to, "to", 0, "Last row index (0 = server default)")
}

func newRecordsListCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	rng := &rangeFlags{}
	var (
		columns       []string
		sortBy        string
		sortOrder     string
		modifiedSince string
	)

	cmd := &cobra.Command{
		Use:   "list <module>",
		Short: "List records of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order := client.SortOrder(sortOrder)
			if order != client.Asc && order != client.Desc {
				return errors.New(errors.CodeCfgInvalid, "sort order must be asc or desc", map[string]any{"sort_order": sortOrder})
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.GetRecords(args[0]).SelectColumns(columns...).Range(rng.from, rng.to)
				if sortBy != "" {
					req.SortBy(sortBy, order)
				}
				if modifiedSince != "" {
					t, err := parseTimeFlag("modified-since", modifiedSince)
					if err != nil {
						return nil, err
					}
					req.ModifiedSince(t)
				}
				return client.OrEmpty(req.Do(ctx))
			})
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to select (comma separated)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort column")
	cmd.Flags().StringVar(&sortOrder, "sort-order", string(client.Asc), "Sort order: asc|desc")
	cmd.Flags().StringVar(&modifiedSince, "modified-since", "", "Only records modified after this time (2006-01-02 15:04:05)")
	rng.register(cmd)
	flags.register(cmd)
	return cmd
}

func newRecordsGetCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	cmd := &cobra.Command{
		Use:   "get <module> <id>...",
		Short: "Fetch records by id",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				return c.GetRecordByID(args[0]).ID(args[1:]...).Do(ctx)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRecordsSearchCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	rng := &rangeFlags{}
	var (
		criteria string
		column   string
		value    string
		columns  []string
	)

	cmd := &cobra.Command{
		Use:   "search <module>",
		Short: "Search records by criteria or by a predefined column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case criteria != "" && column != "":
				return errors.New(errors.CodeCfgInvalid, "--criteria and --column are mutually exclusive", nil)
			case criteria == "" && column == "":
				return errors.New(errors.CodeCfgInvalid, "--criteria or --column is required", nil)
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				if column != "" {
					return client.OrEmpty(c.GetSearchRecordsByPDC(args[0]).
						Column(column).Value(value).SelectColumns(columns...).Do(ctx))
				}
				return client.OrEmpty(c.SearchRecords(args[0]).
					Criteria(criteria).SelectColumns(columns...).Range(rng.from, rng.to).Do(ctx))
			})
		},
	}
	cmd.Flags().StringVar(&criteria, "criteria", "", "Search criteria, e.g. (Email:a@b.com)")
	cmd.Flags().StringVar(&column, "column", "", "Predefined search column")
	cmd.Flags().StringVar(&value, "value", "", "Value for --column")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to select (comma separated)")
	rng.register(cmd)
	flags.register(cmd)
	return cmd
}

func newRecordsRelatedCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	rng := &rangeFlags{}
	cmd := &cobra.Command{
		Use:   "related <module> <parent-module> <id>",
		Short: "List records related to a parent record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				return client.OrEmpty(c.GetRelatedRecords(args[0]).
					ParentModule(args[1]).ID(args[2]).Range(rng.from, rng.to).Do(ctx))
			})
		},
	}
	rng.register(cmd)
	flags.register(cmd)
	return cmd
}

func newRecordsInsertCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var (
		data           string
		duplicateCheck int
		trigger        bool
		approval       bool
	)

	cmd := &cobra.Command{
		Use:   "insert <module>",
		Short: "Insert records (requires unsafe_allow_write)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, data)
			if err != nil {
				return err
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.InsertRecords(args[0]).Records(records...)
				if duplicateCheck != 0 {
					req.DuplicateCheck(duplicateCheck)
				}
				if trigger {
					req.TriggerWorkflow()
				}
				if approval {
					req.Approval()
				}
				return req.Do(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "YAML/JSON file with records (- for stdin)")
	cmd.Flags().IntVar(&duplicateCheck, "duplicate-check", 0, "1 = error on duplicate, 2 = update duplicate")
	cmd.Flags().BoolVar(&trigger, "trigger", false, "Trigger workflow rules")
	cmd.Flags().BoolVar(&approval, "approval", false, "Send records for approval")
	flags.register(cmd)
	return cmd
}

func newRecordsUpdateCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var (
		data    string
		id      string
		trigger bool
	)

	cmd := &cobra.Command{
		Use:   "update <module>",
		Short: "Update records (requires unsafe_allow_write)",
		Long:  "Update records. With --id the data must hold a single record; otherwise each record carries its own Id field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, data)
			if err != nil {
				return err
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.UpdateRecords(args[0]).Records(records...)
				if id != "" {
					req.ID(id)
				}
				if trigger {
					req.TriggerWorkflow()
				}
				return req.Do(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "YAML/JSON file with records (- for stdin)")
	cmd.Flags().StringVar(&id, "id", "", "Record id for a single-record update")
	cmd.Flags().BoolVar(&trigger, "trigger", false, "Trigger workflow rules")
	flags.register(cmd)
	return cmd
}

func newRecordsUpdateRelatedCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	var data string

	cmd := &cobra.Command{
		Use:   "update-related <module> <id> <related-module>",
		Short: "Update records related to a record (requires unsafe_allow_write)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(cmd, data)
			if err != nil {
				return err
			}
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				return c.UpdateRelatedRecords(args[0]).ID(args[1]).RelatedModule(args[2]).Records(records...).Do(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "YAML/JSON file with records (- for stdin)")
	flags.register(cmd)
	return cmd
}

func newRecordsDeleteCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	cmd := &cobra.Command{
		Use:   "delete <module> <id>",
		Short: "Delete a record (requires unsafe_allow_write)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				return c.DeleteRecords(args[0]).ID(args[1]).Do(ctx)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRecordsDeletedCommand(w *output.Writer) *cobra.Command {
	flags := &SessionFlags{}
	rng := &rangeFlags{}
	var since string

	cmd := &cobra.Command{
		Use:   "deleted <module>",
		Short: "List ids of deleted records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCRM(cmd, w, flags, func(ctx context.Context, c *client.Client) (any, error) {
				req := c.GetDeletedRecordIDs(args[0]).Range(rng.from, rng.to)
				if since != "" {
					t, err := parseTimeFlag("since", since)
					if err != nil {
						return nil, err
					}
					req.Since(t)
				}
				ids, err := req.Do(ctx)
				if errors.HasCode(err, errors.CodeNoData) {
					return zoho.DeletedIDs{Row: 1, IDs: []string{}}, nil
				}
				return ids, err
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "Only records deleted after this time (2006-01-02 15:04:05)")
	rng.register(cmd)
	flags.register(cmd)
	return cmd
}
