// Package client 提供 Zoho CRM 各操作的请求构建器：累积参数后交给 codec 执行。
package client

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/zx06/zcrm/internal/codec"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/log"
	"github.com/zx06/zcrm/internal/zoho"
)

// 请求参数名。
const (
	ParamID             = "id"
	ParamIDList         = "idlist"
	ParamSelectColumns  = "selectColumns"
	ParamFromIndex      = "fromIndex"
	ParamToIndex        = "toIndex"
	ParamSortColumn     = "sortColumnString"
	ParamSortOrder      = "sortOrderString"
	ParamLastModified   = "lastModifiedTime"
	ParamCriteria       = "criteria"
	ParamSearchColumn   = "searchColumn"
	ParamSearchValue    = "searchValue"
	ParamParentModule   = "parentModule"
	ParamRelatedModule  = "relatedModule"
	ParamWFTrigger      = "wfTrigger"
	ParamDuplicateCheck = "duplicateCheck"
	ParamIsApproval     = "isApproval"
	ParamVersion        = "version"
	ParamNewFormat      = "newFormat"
	ParamAttachmentURL  = "attachmentUrl"
	ParamType           = "type"
)

// 多行写入使用 version=4，响应按行返回 success/error。
const batchVersion = "4"

// Caller 由 *codec.Codec 实现。
type Caller interface {
	Call(ctx context.Context, module string, op zoho.Operation, p codec.Params) (codec.Result, error)
}

// Client 是各请求构建器的入口。默认只读：写操作返回 ZCRM_RO_BLOCKED。
type Client struct {
	caller     Caller
	allowWrite bool
	logger     *slog.Logger
}

type Option func(*Client)

// WithWrites 允许写操作（insert/update/delete/upload）。
func WithWrites(allow bool) Option {
	return func(c *Client) { c.allowWrite = allow }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(caller Caller, opts ...Option) *Client {
	c := &Client{caller: caller, logger: log.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllowsWrites 报告写操作是否被放行。
func (c *Client) AllowsWrites() bool { return c.allowWrite }

// request 是所有构建器共享的参数累积器。
type request struct {
	c      *Client
	module string
	op     zoho.Operation
	params codec.Params
	err    *errors.XError
}

func newRequest(c *Client, module string, op zoho.Operation) request {
	return request{c: c, module: module, op: op, params: codec.Params{Values: map[string]string{}}}
}

func (r *request) set(key, value string) {
	r.params.Values[key] = value
}

func (r *request) setRange(from, to int) {
	if from < 1 || to < from {
		r.fail("invalid row range", map[string]any{"from": from, "to": to})
		return
	}
	r.set(ParamFromIndex, strconv.Itoa(from))
	r.set(ParamToIndex, strconv.Itoa(to))
}

func (r *request) setTime(key string, t time.Time) {
	r.set(key, t.Format(zoho.DateTimeLayout))
}

// fail 记录第一个参数错误，在 Do 时返回。
func (r *request) fail(msg string, details map[string]any) {
	if r.err == nil {
		r.err = errors.New(errors.CodeCfgInvalid, msg, details)
	}
}

func (r *request) require(keys ...string) {
	for _, k := range keys {
		if r.params.Values[k] == "" {
			r.fail("missing required parameter", map[string]any{"operation": string(r.op), "param": k})
			return
		}
	}
}

func (r *request) do(ctx context.Context) (codec.Result, error) {
	if r.err != nil {
		return codec.Result{}, r.err
	}
	if r.module == "" {
		return codec.Result{}, errors.New(errors.CodeCfgInvalid, "module is required", map[string]any{"operation": string(r.op)})
	}
	if r.op.IsWrite() && !r.c.allowWrite {
		return codec.Result{}, errors.New(errors.CodeROBlocked, "write operation blocked by read-only policy; set unsafe_allow_write on the profile",
			map[string]any{errors.DetailOperation: string(r.op), errors.DetailModule: r.module})
	}
	r.c.logger.Debug("zoho call", "module", r.module, "operation", string(r.op))
	res, err := r.c.caller.Call(ctx, r.module, r.op, r.params)
	if code := errors.ZohoCode(err); code != "" {
		r.c.logger.Debug("zoho call failed", "module", r.module, "operation", string(r.op), "zoho_code", code)
	}
	return res, err
}

func (r *request) records(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	res, err := r.do(ctx)
	if err != nil {
		return nil, err
	}
	return res.AsRecords()
}

func (r *request) mutations(ctx context.Context) (*zoho.Rows[zoho.MutationResult], error) {
	res, err := r.do(ctx)
	if err != nil {
		return nil, err
	}
	return res.AsMutations()
}

func (r *request) mutation(ctx context.Context) (zoho.MutationResult, error) {
	res, err := r.do(ctx)
	if err != nil {
		return zoho.MutationResult{}, err
	}
	return res.AsMutation()
}

// OrEmpty 把列表类调用的 nodata 响应转换为空结果，其余错误原样返回。
func OrEmpty[T any](rows *zoho.Rows[T], err error) (*zoho.Rows[T], error) {
	if errors.HasCode(err, errors.CodeNoData) {
		return zoho.NewRows[T](), nil
	}
	return rows, err
}
