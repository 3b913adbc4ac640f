package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zx06/zcrm/internal/app"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
)

func main() {
	os.Exit(run())
}

// run is the main entry point
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWith(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// runWith executes the CLI against the given arguments and streams.
func runWith(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	GlobalConfig = &Config{}

	a := app.New(version, commit, date)
	w := output.New(stdout, stderr)

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))
	root.AddCommand(NewFieldsCommand(&w))
	root.AddCommand(NewRecordsCommand(&w))
	root.AddCommand(NewFilesCommand(&w))
	root.AddCommand(NewProfileCommand(&w))
	root.AddCommand(NewMCPCommand())

	if err := root.ExecuteContext(ctx); err != nil {
		xe := normalizeErr(err)
		format := resolveFormatForError(GlobalConfig.FormatStr)
		_ = w.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}
	return int(errors.ExitOK)
}
