package mcp

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/zcrm/internal/app"
	"github.com/zx06/zcrm/internal/client"
	"github.com/zx06/zcrm/internal/config"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/output"
	"github.com/zx06/zcrm/internal/zoho"
)

// FieldsInput represents the input for the fields tool
type FieldsInput struct {
	Profile   string `json:"profile"`
	Module    string `json:"module"`
	Mandatory bool   `json:"mandatory,omitempty"`
}

// RecordsListInput represents the input for the records_list tool
type RecordsListInput struct {
	Profile       string   `json:"profile"`
	Module        string   `json:"module"`
	Columns       []string `json:"columns,omitempty"`
	From          int      `json:"from,omitempty"`
	To            int      `json:"to,omitempty"`
	SortBy        string   `json:"sort_by,omitempty"`
	SortOrder     string   `json:"sort_order,omitempty"`
	ModifiedSince string   `json:"modified_since,omitempty"`
}

// RecordGetInput represents the input for the record_get tool
type RecordGetInput struct {
	Profile string   `json:"profile"`
	Module  string   `json:"module"`
	IDs     []string `json:"ids"`
}

// RecordsSearchInput represents the input for the records_search tool
type RecordsSearchInput struct {
	Profile  string   `json:"profile"`
	Module   string   `json:"module"`
	Criteria string   `json:"criteria,omitempty"`
	Column   string   `json:"column,omitempty"`
	Value    string   `json:"value,omitempty"`
	Columns  []string `json:"columns,omitempty"`
	From     int      `json:"from,omitempty"`
	To       int      `json:"to,omitempty"`
}

// DeletedIDsInput represents the input for the deleted_ids tool
type DeletedIDsInput struct {
	Profile string `json:"profile"`
	Module  string `json:"module"`
	Since   string `json:"since,omitempty"`
	From    int    `json:"from,omitempty"`
	To      int    `json:"to,omitempty"`
}

// RecordsInsertInput represents the input for the records_insert tool.
// Records keeps the raw JSON so field order survives decoding.
type RecordsInsertInput struct {
	Profile        string          `json:"profile"`
	Module         string          `json:"module"`
	Records        json.RawMessage `json:"records"`
	DuplicateCheck int             `json:"duplicate_check,omitempty"`
	Trigger        bool            `json:"trigger,omitempty"`
}

// RecordsDeleteInput represents the input for the records_delete tool
type RecordsDeleteInput struct {
	Profile string `json:"profile"`
	Module  string `json:"module"`
	ID      string `json:"id"`
}

// Connector opens a CRM client for a resolved profile.
type Connector func(ctx context.Context, profile config.Profile) (*client.Client, func() error, *errors.XError)

// DefaultConnector builds the client through app.ResolveSession.
func DefaultConnector(ctx context.Context, profile config.Profile) (*client.Client, func() error, *errors.XError) {
	sess, xe := app.ResolveSession(ctx, app.SessionOptions{Profile: profile})
	if xe != nil {
		return nil, nil, xe
	}
	return sess.Client, sess.Close, nil
}

// ToolHandler manages MCP tools
type ToolHandler struct {
	config  *config.File
	connect Connector
}

// NewToolHandler creates a new tool handler
func NewToolHandler(cfg *config.File, connect Connector) *ToolHandler {
	if connect == nil {
		connect = DefaultConnector
	}
	return &ToolHandler{config: cfg, connect: connect}
}

// getProfileNames returns the configured profile names, sorted
func (h *ToolHandler) getProfileNames() []string {
	names := make([]string, 0, len(h.config.Profiles))
	for name := range h.config.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func integer(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func strList(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: desc, Items: &jsonschema.Schema{Type: "string"}}
}

// objectSchema adds the profile/module pair every CRM tool takes.
func (h *ToolHandler) objectSchema(profileEnums []any, required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	props["profile"] = &jsonschema.Schema{Type: "string", Description: "Profile name to use", Enum: profileEnums}
	props["module"] = str("CRM module, e.g. Leads, Contacts, Potentials")
	return &jsonschema.Schema{
		Type:       "object",
		Required:   append([]string{"profile", "module"}, required...),
		Properties: props,
	}
}

// raw adapts a typed tool function to the raw handler signature used with custom schemas.
func raw[In any](h *ToolHandler, fn func(context.Context, In) (any, error)) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var input In
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
				return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
			}
		}
		data, err := fn(ctx, input)
		if err != nil {
			return h.errorResult(err), nil
		}
		return h.okResult(data), nil
	}
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	profileNames := h.getProfileNames()
	profileEnums := make([]any, len(profileNames))
	for i, name := range profileNames {
		profileEnums[i] = name
	}

	server.AddTool(&mcp.Tool{
		Name:        "fields",
		Description: "List the field layout (sections, types, mandatory flags) of a CRM module",
		InputSchema: h.objectSchema(profileEnums, nil, map[string]*jsonschema.Schema{
			"mandatory": {Type: "boolean", Description: "Only mandatory fields"},
		}),
	}, raw(h, h.Fields))

	server.AddTool(&mcp.Tool{
		Name:        "records_list",
		Description: "List records of a CRM module",
		InputSchema: h.objectSchema(profileEnums, nil, map[string]*jsonschema.Schema{
			"columns":        strList("Columns to select"),
			"from":           integer("First row index (1-based)"),
			"to":             integer("Last row index"),
			"sort_by":        str("Sort column"),
			"sort_order":     {Type: "string", Description: "Sort order", Enum: []any{"asc", "desc"}},
			"modified_since": str("Only records modified after this time (yyyy-MM-dd HH:mm:ss)"),
		}),
	}, raw(h, h.RecordsList))

	server.AddTool(&mcp.Tool{
		Name:        "record_get",
		Description: "Fetch records by id",
		InputSchema: h.objectSchema(profileEnums, []string{"ids"}, map[string]*jsonschema.Schema{
			"ids": strList("Record ids"),
		}),
	}, raw(h, h.RecordGet))

	server.AddTool(&mcp.Tool{
		Name:        "records_search",
		Description: "Search records by criteria, or by a predefined column and value",
		InputSchema: h.objectSchema(profileEnums, nil, map[string]*jsonschema.Schema{
			"criteria": str("Search criteria, e.g. (Email:a@b.com)"),
			"column":   str("Predefined search column"),
			"value":    str("Value for column"),
			"columns":  strList("Columns to select"),
			"from":     integer("First row index (1-based)"),
			"to":       integer("Last row index"),
		}),
	}, raw(h, h.RecordsSearch))

	server.AddTool(&mcp.Tool{
		Name:        "deleted_ids",
		Description: "List ids of deleted records",
		InputSchema: h.objectSchema(profileEnums, nil, map[string]*jsonschema.Schema{
			"since": str("Only records deleted after this time (yyyy-MM-dd HH:mm:ss)"),
			"from":  integer("First row index (1-based)"),
			"to":    integer("Last row index"),
		}),
	}, raw(h, h.DeletedIDs))

	server.AddTool(&mcp.Tool{
		Name:        "records_insert",
		Description: "Insert records (requires unsafe_allow_write on the profile)",
		InputSchema: h.objectSchema(profileEnums, []string{"records"}, map[string]*jsonschema.Schema{
			"records":         {Type: "array", Description: "Records as objects of field name to value", Items: &jsonschema.Schema{Type: "object"}},
			"duplicate_check": {Type: "integer", Description: "1 = error on duplicate, 2 = update duplicate", Enum: []any{1, 2}},
			"trigger":         {Type: "boolean", Description: "Trigger workflow rules"},
		}),
	}, raw(h, h.RecordsInsert))

	server.AddTool(&mcp.Tool{
		Name:        "records_delete",
		Description: "Delete a record (requires unsafe_allow_write on the profile)",
		InputSchema: h.objectSchema(profileEnums, []string{"id"}, map[string]*jsonschema.Schema{
			"id": str("Record id"),
		}),
	}, raw(h, h.RecordsDelete))

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "profile_list",
		Description: "List all configured profiles",
	}, h.ProfileList)
}

// withClient resolves the profile and runs fn with a connected client.
func (h *ToolHandler) withClient(ctx context.Context, profileName, module string, fn func(*client.Client) (any, error)) (any, error) {
	if profileName == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "profile is required", nil)
	}
	if module == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "module is required", nil)
	}
	if _, ok := h.config.Profiles[profileName]; !ok {
		return nil, errors.New(errors.CodeCfgInvalid, "profile does not exist", map[string]any{"name": profileName, "reason": "profile_not_found"})
	}
	profile, xe := config.ResolveNamed(*h.config, profileName)
	if xe != nil {
		return nil, xe
	}
	c, closeFn, xe := h.connect(ctx, profile)
	if xe != nil {
		return nil, xe
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(c)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := zoho.ParseTime(s)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.CodeCfgInvalid, "invalid time", map[string]any{field: s}, err)
	}
	return t, nil
}

// Fields lists the field layout of a module
func (h *ToolHandler) Fields(ctx context.Context, input FieldsInput) (any, error) {
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		req := c.GetFields(input.Module)
		if input.Mandatory {
			req.MandatoryOnly()
		}
		return req.Do(ctx)
	})
}

// RecordsList lists records; nodata yields an empty listing
func (h *ToolHandler) RecordsList(ctx context.Context, input RecordsListInput) (any, error) {
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		req := c.GetRecords(input.Module).SelectColumns(input.Columns...).Range(input.From, input.To)
		if input.SortBy != "" {
			order := client.Asc
			if input.SortOrder == "desc" {
				order = client.Desc
			}
			req.SortBy(input.SortBy, order)
		}
		if input.ModifiedSince != "" {
			t, err := parseTime("modified_since", input.ModifiedSince)
			if err != nil {
				return nil, err
			}
			req.ModifiedSince(t)
		}
		return client.OrEmpty(req.Do(ctx))
	})
}

// RecordGet fetches records by id
func (h *ToolHandler) RecordGet(ctx context.Context, input RecordGetInput) (any, error) {
	if len(input.IDs) == 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "ids is required", nil)
	}
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		return c.GetRecordByID(input.Module).ID(input.IDs...).Do(ctx)
	})
}

// RecordsSearch searches by criteria or by predefined column
func (h *ToolHandler) RecordsSearch(ctx context.Context, input RecordsSearchInput) (any, error) {
	switch {
	case input.Criteria != "" && input.Column != "":
		return nil, errors.New(errors.CodeCfgInvalid, "criteria and column are mutually exclusive", nil)
	case input.Criteria == "" && input.Column == "":
		return nil, errors.New(errors.CodeCfgInvalid, "criteria or column is required", nil)
	}
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		if input.Column != "" {
			return client.OrEmpty(c.GetSearchRecordsByPDC(input.Module).
				Column(input.Column).Value(input.Value).SelectColumns(input.Columns...).Do(ctx))
		}
		return client.OrEmpty(c.SearchRecords(input.Module).
			Criteria(input.Criteria).SelectColumns(input.Columns...).Range(input.From, input.To).Do(ctx))
	})
}

// DeletedIDs lists ids of deleted records
func (h *ToolHandler) DeletedIDs(ctx context.Context, input DeletedIDsInput) (any, error) {
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		req := c.GetDeletedRecordIDs(input.Module).Range(input.From, input.To)
		if input.Since != "" {
			t, err := parseTime("since", input.Since)
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
}

// RecordsInsert inserts records; the read-only guard applies
func (h *ToolHandler) RecordsInsert(ctx context.Context, input RecordsInsertInput) (any, error) {
	if len(input.Records) == 0 {
		return nil, errors.New(errors.CodeCfgInvalid, "records is required", nil)
	}
	records, err := zoho.ParseRecords(input.Records)
	if err != nil {
		return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid records", nil, err)
	}
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		req := c.InsertRecords(input.Module).Records(records...)
		if input.DuplicateCheck != 0 {
			req.DuplicateCheck(input.DuplicateCheck)
		}
		if input.Trigger {
			req.TriggerWorkflow()
		}
		return req.Do(ctx)
	})
}

// RecordsDelete deletes one record; the read-only guard applies
func (h *ToolHandler) RecordsDelete(ctx context.Context, input RecordsDeleteInput) (any, error) {
	if input.ID == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "id is required", nil)
	}
	return h.withClient(ctx, input.Profile, input.Module, func(c *client.Client) (any, error) {
		return c.DeleteRecords(input.Module).ID(input.ID).Do(ctx)
	})
}

type profileInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Endpoint    string `json:"endpoint"`
	Mode        string `json:"mode"`
}

// ProfileList lists all profiles
func (h *ToolHandler) ProfileList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	profiles := make([]profileInfo, 0, len(h.config.Profiles))
	for _, name := range h.getProfileNames() {
		p := h.config.Profiles[name]
		mode := "read-only"
		if p.UnsafeAllowWrite {
			mode = "read-write"
		}
		endpoint := p.Endpoint
		if endpoint == "" {
			endpoint = config.DefaultEndpoint
		}
		profiles = append(profiles, profileInfo{
			Name:        name,
			Description: p.Description,
			Endpoint:    endpoint,
			Mode:        mode,
		})
	}
	return h.okResult(map[string]any{"profiles": profiles}), nil, nil
}

func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(output.OK(data), "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonData)}},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: h.formatError(err)}},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	}
	jsonData, _ := json.MarshalIndent(output.Fail(xe), "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server
func CreateServer(version string, cfg *config.File, connect Connector) (*mcp.Server, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeInternal, "config is nil", nil)
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "zcrm",
		Version: version,
	}, nil)

	handler := NewToolHandler(cfg, connect)
	handler.RegisterTools(server)

	return server, nil
}
