package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zx06/zcrm/internal/app"
	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/log"
	"github.com/zx06/zcrm/internal/output"
	"github.com/zx06/zcrm/internal/zoho"
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f := output.Format(s)
	if !output.IsValid(f) {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s})
	}
	return output.Resolve(f, stdoutIsTTY()), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f := output.Format(s)
	if !output.IsValid(f) {
		f = output.FormatAuto
	}
	return output.Resolve(f, stdoutIsTTY())
}

func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// SessionFlags are the per-command connection overrides.
type SessionFlags struct {
	AllowPlaintext bool
	SSHSkipHostKey bool
}

func (f *SessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.AllowPlaintext, "allow-plaintext", false, "Allow plaintext secrets in config")
	cmd.Flags().BoolVar(&f.SSHSkipHostKey, "ssh-skip-known-hosts-check", false, "Skip SSH known_hosts check (dangerous)")
}

// openSession connects to the CRM using the resolved profile.
func openSession(cmd *cobra.Command, flags *SessionFlags) (*app.Session, error) {
	logger := log.New(cmd.ErrOrStderr(), GlobalConfig.Verbose)
	sess, xe := app.ResolveSession(cmd.Context(), app.SessionOptions{
		Profile:          GlobalConfig.Resolved.Profile,
		AllowPlaintext:   flags.AllowPlaintext,
		SkipHostKeyCheck: flags.SSHSkipHostKey,
		Logger:           logger.With("profile", GlobalConfig.Resolved.ProfileName),
	})
	if xe != nil {
		return nil, xe
	}
	return sess, nil
}

// readRecords loads a YAML or JSON record list from path, or stdin for "-".
func readRecords(cmd *cobra.Command, path string) ([]zoho.Record, error) {
	if path == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "--data is required", nil)
	}
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "failed to read records", map[string]any{"path": path}, err)
	}
	records, err := zoho.ParseRecords(b)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid records", map[string]any{"path": path}, err)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "no records in data", map[string]any{"path": path})
	}
	return records, nil
}

// parseTimeFlag parses a time flag in yyyy-MM-dd HH:mm:ss or MM/dd/yyyy form.
func parseTimeFlag(name, value string) (time.Time, error) {
	t, err := zoho.ParseTime(value)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.CodeCfgInvalid, "invalid time", map[string]any{"flag": name, "value": value}, err)
	}
	return t, nil
}

// runCRM opens a session, runs fn and writes its result.
func runCRM(cmd *cobra.Command, w *output.Writer, flags *SessionFlags, fn func(context.Context, *client.Client) (any, error)) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd, flags)
	if err != nil {
		return err
	}
	defer sess.Close()

	data, err := fn(cmd.Context(), sess.Client)
	if err != nil {
		return err
	}
	return w.WriteOK(format, data)
}
