package codec

import (
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/zoho"
)

// Shape 标识解码结果的形状。
type Shape string

const (
	ShapeFields     Shape = "fields"
	ShapeMutation   Shape = "mutation"
	ShapeMutations  Shape = "mutations"
	ShapeRecords    Shape = "records"
	ShapeDeletedIDs Shape = "deleted_ids"
	ShapeDownload   Shape = "download"
)

// Result 是一次调用的解码结果，只有与 Shape 对应的字段有值。
type Result struct {
	Shape      Shape
	Fields     zoho.FieldList
	Mutation   zoho.MutationResult
	Mutations  *zoho.Rows[zoho.MutationResult]
	Records    *zoho.Rows[zoho.Record]
	DeletedIDs zoho.DeletedIDs
	Downloaded bool
}

// Data 返回与 Shape 对应的载荷，供输出使用。
func (r Result) Data() any {
	switch r.Shape {
	case ShapeFields:
		return r.Fields
	case ShapeMutation:
		return r.Mutation
	case ShapeMutations:
		return r.Mutations
	case ShapeRecords:
		return r.Records
	case ShapeDeletedIDs:
		return r.DeletedIDs
	case ShapeDownload:
		return map[string]any{"downloaded": r.Downloaded}
	default:
		return nil
	}
}

func (r Result) expect(s Shape) *errors.XError {
	if r.Shape == s {
		return nil
	}
	return errors.New(errors.CodeMalformedResponse, "unexpected response shape",
		map[string]any{"want": string(s), "got": string(r.Shape)})
}

func (r Result) AsFields() (zoho.FieldList, error) {
	if xe := r.expect(ShapeFields); xe != nil {
		return nil, xe
	}
	return r.Fields, nil
}

func (r Result) AsMutation() (zoho.MutationResult, error) {
	if xe := r.expect(ShapeMutation); xe != nil {
		return zoho.MutationResult{}, xe
	}
	return r.Mutation, nil
}

func (r Result) AsMutations() (*zoho.Rows[zoho.MutationResult], error) {
	if xe := r.expect(ShapeMutations); xe != nil {
		return nil, xe
	}
	return r.Mutations, nil
}

func (r Result) AsRecords() (*zoho.Rows[zoho.Record], error) {
	if xe := r.expect(ShapeRecords); xe != nil {
		return nil, xe
	}
	return r.Records, nil
}

func (r Result) AsDeletedIDs() (zoho.DeletedIDs, error) {
	if xe := r.expect(ShapeDeletedIDs); xe != nil {
		return zoho.DeletedIDs{}, xe
	}
	return r.DeletedIDs, nil
}

func (r Result) AsDownload() (bool, error) {
	if xe := r.expect(ShapeDownload); xe != nil {
		return false, xe
	}
	return r.Downloaded, nil
}
