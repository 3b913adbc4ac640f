package codec

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/zoho"
)

// 上传成功且带 recorddetail 时使用的结果码。
const uploadDetailCode = "4800"

func decodeDownload(c *call) (Result, error) {
	if c.params.FilePath == "" {
		return Result{}, errors.New(errors.CodeCfgInvalid, "download destination is missing; set a file path", nil)
	}
	n, err := c.sink.WriteFile(c.params.FilePath, bytes.NewReader(c.raw))
	if err != nil {
		return Result{}, errors.Wrap(errors.CodeInternal, "failed to write downloaded file", map[string]any{"path": c.params.FilePath}, err)
	}
	return Result{Shape: ShapeDownload, Downloaded: n > 0}, nil
}

func zohoError(el *etree.Element) *zoho.Error {
	return &zoho.Error{Code: textAt(el, "code"), Message: textAt(el, "message")}
}

func decodeVendorError(c *call) (Result, error) {
	ze := zohoError(c.root.SelectElement("error"))
	return Result{}, errors.Wrap(errors.CodeVendorError, messageOr(ze.Message, "zoho returned an error"),
		map[string]any{errors.DetailZohoCode: ze.Code, errors.DetailOperation: string(c.op)}, ze)
}

func decodeNoData(c *call) (Result, error) {
	ze := zohoError(c.root.SelectElement("nodata"))
	return Result{}, errors.Wrap(errors.CodeNoData, messageOr(ze.Message, "no data"),
		map[string]any{errors.DetailZohoCode: ze.Code, errors.DetailOperation: string(c.op)}, ze)
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func decodeFields(c *call) (Result, error) {
	var fields zoho.FieldList
	for _, section := range c.root.SelectElements("section") {
		for _, f := range section.ChildElements() {
			var options []string
			for _, opt := range f.ChildElements() {
				options = append(options, opt.Text())
			}
			fields = append(fields, zoho.FieldDescriptor{
				Section:      section.SelectAttrValue("name", ""),
				Label:        f.SelectAttrValue("label", ""),
				Type:         f.SelectAttrValue("type", ""),
				Required:     f.SelectAttrValue("req", "") == "true",
				ReadOnly:     f.SelectAttrValue("isreadonly", "") == "true",
				MaxLength:    leadingInt(f.SelectAttrValue("maxlength", "")),
				Options:      options,
				Custom:       f.SelectAttrValue("customfield", "") == "true",
				LastModified: f.SelectAttrValue("lm", "false") == "true",
			})
		}
	}
	return Result{Shape: ShapeFields, Fields: fields}, nil
}

func decodeDeleteRecords(c *call) (Result, error) {
	return Result{
		Shape:    ShapeMutation,
		Mutation: zoho.MutationResult{Row: 1, Code: textAt(c.root, "result", "code")},
	}, nil
}

func decodeUploadFile(c *call) (Result, error) {
	detail := child(c.root, "result", "recorddetail")
	if detail == nil {
		return Result{Shape: ShapeMutation, Mutation: zoho.MutationResult{Row: 1, Code: "0"}}, nil
	}
	m := zoho.MutationResult{Row: 1, Code: uploadDetailCode}
	// recorddetail 的前三个 FL 依次为 Id、Created Time、Modified Time。
	setters := []*string{&m.ID, &m.CreatedTime, &m.ModifiedTime}
	for i, fl := range detail.SelectElements("FL") {
		if i >= len(setters) {
			break
		}
		*setters[i] = fl.Text()
	}
	return Result{Shape: ShapeMutation, Mutation: m}, nil
}

func decodeDeleteFile(c *call) (Result, error) {
	return Result{
		Shape:    ShapeMutation,
		Mutation: zoho.MutationResult{Row: 1, Code: textAt(c.root, "success", "code")},
	}, nil
}

func decodeDeletedIDs(c *call) (Result, error) {
	// 与 Zoho 返回的列表逐项对应：空串得到 [""]，空项保留
	ids := strings.Split(textAt(c.root, "result", "DeletedIDs"), ",")
	return Result{Shape: ShapeDeletedIDs, DeletedIDs: zoho.DeletedIDs{Row: 1, IDs: ids}}, nil
}

func decodeRecords(c *call) (Result, error) {
	rows := zoho.NewRows[zoho.Record]()
	for _, row := range child(c.root, "result", c.module).SelectElements("row") {
		rows.Set(row.SelectAttrValue("no", ""), rowToRecord(row))
	}
	return Result{Shape: ShapeRecords, Records: rows}, nil
}

func rowToRecord(row *etree.Element) zoho.Record {
	var b zoho.RecordBuilder
	for _, field := range row.ChildElements() {
		key := field.SelectAttrValue("val", "")
		if len(field.ChildElements()) == 0 {
			b.Set(key, zoho.String(field.Text()))
			continue
		}
		if v, ok := multiValue(field); ok {
			b.Set(key, v)
		}
	}
	return b.Build()
}

// multiValue 只还原两层：field → item(no) → subitem(val)。更深的结构不会被还原。
func multiValue(field *etree.Element) (zoho.Value, bool) {
	type item struct {
		tag     string
		entries []zoho.Entry
	}
	var order []string
	items := map[string]*item{}
	for _, it := range field.ChildElements() {
		no := it.SelectAttrValue("no", "")
		for _, sub := range it.ChildElements() {
			x, ok := items[no]
			if !ok {
				x = &item{tag: it.Tag}
				items[no] = x
				order = append(order, no)
			}
			x.entries = append(x.entries, zoho.Field(sub.SelectAttrValue("val", ""), zoho.String(sub.Text())))
		}
	}
	if len(order) == 0 {
		return zoho.Value{}, false
	}
	entries := make([]zoho.Entry, 0, len(order))
	for _, no := range order {
		x := items[no]
		entries = append(entries, zoho.Field(no, zoho.Nested(x.tag, x.entries...)))
	}
	return zoho.List(entries...), true
}

// detailSetters 是成功明细中可识别字段的白名单（键为去空格、小写后的 val）；其他字段忽略。
var detailSetters = map[string]func(*zoho.MutationResult, string){
	"id":           func(m *zoho.MutationResult, v string) { m.ID = v },
	"createdtime":  func(m *zoho.MutationResult, v string) { m.CreatedTime = v },
	"modifiedtime": func(m *zoho.MutationResult, v string) { m.ModifiedTime = v },
	"createdby":    func(m *zoho.MutationResult, v string) { m.CreatedBy = v },
	"modifiedby":   func(m *zoho.MutationResult, v string) { m.ModifiedBy = v },
}

func detailKey(val string) string {
	return strings.ToLower(strings.ReplaceAll(val, " ", ""))
}

func decodeMutations(c *call) (Result, error) {
	rows := zoho.NewRows[zoho.MutationResult]()
	for _, row := range c.root.SelectElement("result").SelectElements("row") {
		no := row.SelectAttrValue("no", "")
		rows.Set(no, rowToMutation(row, leadingInt(no)))
	}
	return Result{Shape: ShapeMutations, Mutations: rows}, nil
}

func rowToMutation(row *etree.Element, no int) zoho.MutationResult {
	if success := row.SelectElement("success"); success != nil {
		m := zoho.MutationResult{Row: no, Code: textAt(success, "code")}
		if details := success.SelectElement("details"); details != nil {
			for _, fl := range details.ChildElements() {
				if set, ok := detailSetters[detailKey(fl.SelectAttrValue("val", ""))]; ok {
					set(&m, fl.Text())
				}
			}
		}
		return m
	}
	// 没有 success 的行一律按失败处理，避免把未知结构当成成功。
	failure := row.SelectElement("error")
	code := textAt(failure, "code")
	return zoho.MutationResult{
		Row:   no,
		Code:  code,
		Error: &zoho.Error{Code: code, Message: textAt(failure, "details")},
	}
}

// leadingInt 解析开头的十进制整数（可带符号），无法解析时为 0。
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
