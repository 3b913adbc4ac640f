package app

import (
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
	"github.com/zx06/zcrm/internal/spec"
	"github.com/zx06/zcrm/internal/zoho"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

func (a App) BuildSpec() spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Default: "", Description: "Config file path (YAML); default: ./zcrm.yaml or $HOME/.config/zcrm/zcrm.yaml"},
		{Name: "profile", Shorthand: "p", Env: "ZCRM_PROFILE", Default: "", Description: "Profile name (config: profiles.<name>)"},
		{Name: "format", Shorthand: "f", Env: "ZCRM_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "verbose", Shorthand: "v", Default: "false", Description: "Log requests and decode routes to stderr"},
	}
	with := func(extra ...spec.FlagSpec) []spec.FlagSpec {
		flags := make([]spec.FlagSpec, 0, len(globalFlags)+len(extra))
		flags = append(flags, globalFlags...)
		return append(flags, extra...)
	}
	rangeFlags := []spec.FlagSpec{
		{Name: "from", Default: "0", Description: "First row index (1-based, 0 = server default)"},
		{Name: "to", Default: "0", Description: "Last row index (0 = server default)"},
	}
	writeFlags := []spec.FlagSpec{
		{Name: "data", Description: "YAML/JSON file with a list of records (- for stdin)"},
		{Name: "trigger", Default: "false", Description: "Trigger workflow rules"},
	}

	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Commands: []spec.CommandSpec{
			{Name: "spec", Description: "Export tool spec for AI/agents", Flags: with()},
			{Name: "version", Description: "Print version information", Flags: with()},
			{Name: "fields <module>", Description: "List the field layout of a module", Flags: with(
				spec.FlagSpec{Name: "mandatory", Default: "false", Description: "Only mandatory fields"},
			)},
			{Name: "records list <module>", Description: "List records of a module", Flags: with(append(rangeFlags,
				spec.FlagSpec{Name: "columns", Description: "Select columns, e.g. Leads(First Name,Email)"},
				spec.FlagSpec{Name: "sort-by", Description: "Sort column"},
				spec.FlagSpec{Name: "sort-order", Default: "asc", Description: "asc|desc"},
				spec.FlagSpec{Name: "modified-since", Description: "Only records modified after this time (2006-01-02 15:04:05)"},
			)...)},
			{Name: "records get <module> <id>...", Description: "Fetch records by id", Flags: with()},
			{Name: "records search <module>", Description: "Search records by criteria or by a predefined column", Flags: with(append(rangeFlags,
				spec.FlagSpec{Name: "criteria", Description: "Search criteria, e.g. (Email:a@b.com)"},
				spec.FlagSpec{Name: "column", Description: "Predefined search column"},
				spec.FlagSpec{Name: "value", Description: "Value for --column"},
				spec.FlagSpec{Name: "columns", Description: "Select columns"},
			)...)},
			{Name: "records related <module> <parent-module> <id>", Description: "List records related to a parent record", Flags: with(rangeFlags...)},
			{Name: "records insert <module>", Description: "Insert records (requires unsafe_allow_write)", Flags: with(append(writeFlags,
				spec.FlagSpec{Name: "duplicate-check", Default: "0", Description: "1 = error on duplicate, 2 = update duplicate"},
				spec.FlagSpec{Name: "approval", Default: "false", Description: "Send records for approval"},
			)...)},
			{Name: "records update <module>", Description: "Update records (requires unsafe_allow_write)", Flags: with(append(writeFlags,
				spec.FlagSpec{Name: "id", Description: "Record id for a single-record update"},
			)...)},
			{Name: "records update-related <module> <id> <related-module>", Description: "Update related records (requires unsafe_allow_write)", Flags: with(writeFlags[0])},
			{Name: "records delete <module> <id>", Description: "Delete a record (requires unsafe_allow_write)", Flags: with()},
			{Name: "records deleted <module>", Description: "List ids of deleted records", Flags: with(append(rangeFlags,
				spec.FlagSpec{Name: "since", Description: "Only records deleted after this time (2006-01-02 15:04:05)"},
			)...)},
			{Name: "files upload <module> <id>", Description: "Attach a file or link to a record (requires unsafe_allow_write)", Flags: with(
				spec.FlagSpec{Name: "path", Description: "Local file to upload"},
				spec.FlagSpec{Name: "link", Description: "URL to attach instead of a file"},
			)},
			{Name: "files download <module> <id>", Description: "Download an attachment", Flags: with(
				spec.FlagSpec{Name: "out", Description: "Destination path"},
			)},
			{Name: "files delete <module> <id>", Description: "Delete an attachment (requires unsafe_allow_write)", Flags: with()},
			{Name: "profile list", Description: "List configured profiles", Flags: with()},
			{Name: "profile show <name>", Description: "Show a profile without secrets", Flags: with()},
			{Name: "mcp server", Description: "Run the MCP server", Flags: with(
				spec.FlagSpec{Name: "transport", Default: "stdio", Description: "stdio|streamable_http"},
				spec.FlagSpec{Name: "http-addr", Default: "127.0.0.1:8787", Description: "Listen address for streamable_http"},
				spec.FlagSpec{Name: "http-auth-token", Env: "ZCRM_MCP_HTTP_AUTH_TOKEN", Description: "Bearer token for streamable_http"},
			)},
		},
		Operations: operationSpecs(),
		ErrorCodes: errors.AllCodes(),
	}
}

func operationSpecs() []spec.OperationSpec {
	ops := zoho.Operations()
	out := make([]spec.OperationSpec, 0, len(ops))
	for _, op := range ops {
		out = append(out, spec.OperationSpec{Name: op.String(), Write: op.IsWrite()})
	}
	return out
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
