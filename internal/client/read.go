package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zx06/zcrm/internal/zoho"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func selectColumns(module string, cols []string) string {
	return module + "(" + strings.Join(cols, ",") + ")"
}

// GetFieldsRequest 获取模块的字段定义。
type GetFieldsRequest struct{ request }

func (c *Client) GetFields(module string) *GetFieldsRequest {
	return &GetFieldsRequest{newRequest(c, module, zoho.OpGetFields)}
}

// MandatoryOnly 只返回必填字段。
func (r *GetFieldsRequest) MandatoryOnly() *GetFieldsRequest {
	r.set(ParamType, "2")
	return r
}

func (r *GetFieldsRequest) Do(ctx context.Context) (zoho.FieldList, error) {
	res, err := r.do(ctx)
	if err != nil {
		return nil, err
	}
	return res.AsFields()
}

// GetRecordsRequest 分页列出模块记录。
type GetRecordsRequest struct{ request }

func (c *Client) GetRecords(module string) *GetRecordsRequest {
	return &GetRecordsRequest{newRequest(c, module, zoho.OpGetRecords)}
}

func (r *GetRecordsRequest) SelectColumns(cols ...string) *GetRecordsRequest {
	if len(cols) > 0 {
		r.set(ParamSelectColumns, selectColumns(r.module, cols))
	}
	return r
}

// Range 设置 1 起始的闭区间行号。
func (r *GetRecordsRequest) Range(from, to int) *GetRecordsRequest {
	r.setRange(from, to)
	return r
}

func (r *GetRecordsRequest) SortBy(column string, order SortOrder) *GetRecordsRequest {
	r.set(ParamSortColumn, column)
	if order != "" {
		r.set(ParamSortOrder, string(order))
	}
	return r
}

func (r *GetRecordsRequest) ModifiedSince(t time.Time) *GetRecordsRequest {
	r.setTime(ParamLastModified, t)
	return r
}

func (r *GetRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	return r.records(ctx)
}

// GetRecordByIDRequest 按 id 获取一条或多条记录。
type GetRecordByIDRequest struct {
	request
	ids []string
}

func (c *Client) GetRecordByID(module string) *GetRecordByIDRequest {
	return &GetRecordByIDRequest{request: newRequest(c, module, zoho.OpGetRecordByID)}
}

// ID 可多次调用；多个 id 时以 idlist（version=2）发送。
func (r *GetRecordByIDRequest) ID(ids ...string) *GetRecordByIDRequest {
	r.ids = append(r.ids, ids...)
	return r
}

func (r *GetRecordByIDRequest) Do(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	switch len(r.ids) {
	case 0:
		r.fail("missing required parameter", map[string]any{"operation": string(r.op), "param": ParamID})
	case 1:
		r.set(ParamID, r.ids[0])
	default:
		r.set(ParamIDList, strings.Join(r.ids, ";"))
		r.set(ParamVersion, "2")
	}
	return r.records(ctx)
}

// GetRelatedRecordsRequest 获取某父记录下的关联记录。
type GetRelatedRecordsRequest struct{ request }

func (c *Client) GetRelatedRecords(module string) *GetRelatedRecordsRequest {
	return &GetRelatedRecordsRequest{newRequest(c, module, zoho.OpGetRelatedRecords)}
}

func (r *GetRelatedRecordsRequest) ParentModule(m string) *GetRelatedRecordsRequest {
	r.set(ParamParentModule, m)
	return r
}

func (r *GetRelatedRecordsRequest) ID(id string) *GetRelatedRecordsRequest {
	r.set(ParamID, id)
	return r
}

func (r *GetRelatedRecordsRequest) Range(from, to int) *GetRelatedRecordsRequest {
	r.setRange(from, to)
	return r
}

func (r *GetRelatedRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	r.require(ParamParentModule, ParamID)
	return r.records(ctx)
}

// SearchRecordsRequest 按条件搜索记录。
type SearchRecordsRequest struct{ request }

func (c *Client) SearchRecords(module string) *SearchRecordsRequest {
	return &SearchRecordsRequest{newRequest(c, module, zoho.OpSearchRecords)}
}

// Criteria 直接设置搜索条件，如 "(Last Name:Smith)"。
func (r *SearchRecordsRequest) Criteria(c string) *SearchRecordsRequest {
	r.set(ParamCriteria, c)
	return r
}

// Where 追加一个等值条件；多个条件以 AND 连接。
func (r *SearchRecordsRequest) Where(column, value string) *SearchRecordsRequest {
	cond := fmt.Sprintf("(%s:%s)", column, value)
	if prev := r.params.Values[ParamCriteria]; prev != "" {
		cond = "(" + prev + "AND" + cond + ")"
	}
	r.set(ParamCriteria, cond)
	return r
}

func (r *SearchRecordsRequest) SelectColumns(cols ...string) *SearchRecordsRequest {
	if len(cols) > 0 {
		r.set(ParamSelectColumns, selectColumns(r.module, cols))
	}
	return r
}

func (r *SearchRecordsRequest) Range(from, to int) *SearchRecordsRequest {
	r.setRange(from, to)
	return r
}

func (r *SearchRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	r.require(ParamCriteria)
	return r.records(ctx)
}

// SearchByPDCRequest 按预定义列（PDC）搜索。
type SearchByPDCRequest struct{ request }

func (c *Client) GetSearchRecordsByPDC(module string) *SearchByPDCRequest {
	return &SearchByPDCRequest{newRequest(c, module, zoho.OpGetSearchRecordsByPDC)}
}

func (r *SearchByPDCRequest) Column(c string) *SearchByPDCRequest {
	r.set(ParamSearchColumn, c)
	return r
}

func (r *SearchByPDCRequest) Value(v string) *SearchByPDCRequest {
	r.set(ParamSearchValue, v)
	return r
}

func (r *SearchByPDCRequest) SelectColumns(cols ...string) *SearchByPDCRequest {
	if len(cols) > 0 {
		r.set(ParamSelectColumns, selectColumns(r.module, cols))
	}
	return r
}

func (r *SearchByPDCRequest) Do(ctx context.Context) (*zoho.Rows[zoho.Record], error) {
	r.require(ParamSearchColumn, ParamSearchValue)
	return r.records(ctx)
}

// GetDeletedRecordIDsRequest 列出已删除记录的 id。
type GetDeletedRecordIDsRequest struct{ request }

func (c *Client) GetDeletedRecordIDs(module string) *GetDeletedRecordIDsRequest {
	return &GetDeletedRecordIDsRequest{newRequest(c, module, zoho.OpGetDeletedRecordIDs)}
}

func (r *GetDeletedRecordIDsRequest) Since(t time.Time) *GetDeletedRecordIDsRequest {
	r.setTime(ParamLastModified, t)
	return r
}

func (r *GetDeletedRecordIDsRequest) Range(from, to int) *GetDeletedRecordIDsRequest {
	r.setRange(from, to)
	return r
}

func (r *GetDeletedRecordIDsRequest) Do(ctx context.Context) (zoho.DeletedIDs, error) {
	res, err := r.do(ctx)
	if err != nil {
		return zoho.DeletedIDs{}, err
	}
	return res.AsDeletedIDs()
}
