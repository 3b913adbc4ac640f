package client

import (
	"context"
	"strconv"

	"github.com/zx06/zcrm/internal/zoho"
)

// recordWrite 是带 xmlData 的写操作公共部分。
type recordWrite struct{ request }

func newRecordWrite(c *Client, module string, op zoho.Operation) recordWrite {
	w := recordWrite{newRequest(c, module, op)}
	w.set(ParamVersion, batchVersion)
	return w
}

func (w *recordWrite) add(rs []zoho.Record) {
	if w.params.Records == nil {
		w.params.Records = []zoho.Record{}
	}
	w.params.Records = append(w.params.Records, rs...)
}

func (w *recordWrite) doRows(ctx context.Context) (*zoho.Rows[zoho.MutationResult], error) {
	if len(w.params.Records) == 0 {
		w.fail("no records to write", map[string]any{"operation": string(w.op)})
	}
	return w.mutations(ctx)
}

// InsertRecordsRequest 批量插入记录。
type InsertRecordsRequest struct{ recordWrite }

func (c *Client) InsertRecords(module string) *InsertRecordsRequest {
	return &InsertRecordsRequest{newRecordWrite(c, module, zoho.OpInsertRecords)}
}

func (r *InsertRecordsRequest) Records(rs ...zoho.Record) *InsertRecordsRequest {
	r.add(rs)
	return r
}

// DuplicateCheck: 1 遇到重复报错，2 更新已有记录。
func (r *InsertRecordsRequest) DuplicateCheck(mode int) *InsertRecordsRequest {
	if mode != 1 && mode != 2 {
		r.fail("duplicate check must be 1 or 2", map[string]any{"value": mode})
		return r
	}
	r.set(ParamDuplicateCheck, strconv.Itoa(mode))
	return r
}

func (r *InsertRecordsRequest) TriggerWorkflow() *InsertRecordsRequest {
	r.set(ParamWFTrigger, "true")
	return r
}

// Approval 让插入的记录进入审批流程。
func (r *InsertRecordsRequest) Approval() *InsertRecordsRequest {
	r.set(ParamIsApproval, "true")
	return r
}

func (r *InsertRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.MutationResult], error) {
	return r.doRows(ctx)
}

// UpdateRecordsRequest 更新记录。单条更新用 ID 指定目标，
// 批量更新时每条记录需自带 Id 字段。
type UpdateRecordsRequest struct{ recordWrite }

func (c *Client) UpdateRecords(module string) *UpdateRecordsRequest {
	return &UpdateRecordsRequest{newRecordWrite(c, module, zoho.OpUpdateRecords)}
}

func (r *UpdateRecordsRequest) ID(id string) *UpdateRecordsRequest {
	r.set(ParamID, id)
	return r
}

func (r *UpdateRecordsRequest) Records(rs ...zoho.Record) *UpdateRecordsRequest {
	r.add(rs)
	return r
}

func (r *UpdateRecordsRequest) TriggerWorkflow() *UpdateRecordsRequest {
	r.set(ParamWFTrigger, "true")
	return r
}

func (r *UpdateRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.MutationResult], error) {
	return r.doRows(ctx)
}

// UpdateRelatedRecordsRequest 更新某记录下的关联记录。
type UpdateRelatedRecordsRequest struct{ recordWrite }

func (c *Client) UpdateRelatedRecords(module string) *UpdateRelatedRecordsRequest {
	return &UpdateRelatedRecordsRequest{newRecordWrite(c, module, zoho.OpUpdateRelatedRecords)}
}

func (r *UpdateRelatedRecordsRequest) ID(id string) *UpdateRelatedRecordsRequest {
	r.set(ParamID, id)
	return r
}

func (r *UpdateRelatedRecordsRequest) RelatedModule(m string) *UpdateRelatedRecordsRequest {
	r.set(ParamRelatedModule, m)
	return r
}

func (r *UpdateRelatedRecordsRequest) Records(rs ...zoho.Record) *UpdateRelatedRecordsRequest {
	r.add(rs)
	return r
}

func (r *UpdateRelatedRecordsRequest) Do(ctx context.Context) (*zoho.Rows[zoho.MutationResult], error) {
	r.require(ParamID, ParamRelatedModule)
	return r.doRows(ctx)
}

// DeleteRecordsRequest 按 id 删除一条记录。
type DeleteRecordsRequest struct{ request }

func (c *Client) DeleteRecords(module string) *DeleteRecordsRequest {
	return &DeleteRecordsRequest{newRequest(c, module, zoho.OpDeleteRecords)}
}

func (r *DeleteRecordsRequest) ID(id string) *DeleteRecordsRequest {
	r.set(ParamID, id)
	return r
}

func (r *DeleteRecordsRequest) Do(ctx context.Context) (zoho.MutationResult, error) {
	r.require(ParamID)
	return r.mutation(ctx)
}
