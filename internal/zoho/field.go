package zoho

import "strings"

// FieldDescriptor 描述模块的一个字段（getFields 的解码结果）。
type FieldDescriptor struct {
	Section      string   `json:"section" yaml:"section"`
	Label        string   `json:"label" yaml:"label"`
	Type         string   `json:"type" yaml:"type"`
	Required     bool     `json:"required" yaml:"required"`
	ReadOnly     bool     `json:"read_only" yaml:"read_only"`
	MaxLength    int      `json:"max_length" yaml:"max_length"`
	Options      []string `json:"options,omitempty" yaml:"options,omitempty"`
	Custom       bool     `json:"custom" yaml:"custom"`
	LastModified bool     `json:"last_modified" yaml:"last_modified"`
}

// FieldList 是 getFields 的结果，实现表格输出。
type FieldList []FieldDescriptor

func (l FieldList) ToTableData() ([]string, []map[string]any, bool) {
	columns := []string{"section", "label", "type", "required", "read_only", "max_length", "custom", "options"}
	rows := make([]map[string]any, 0, len(l))
	for _, f := range l {
		rows = append(rows, map[string]any{
			"section":    f.Section,
			"label":      f.Label,
			"type":       f.Type,
			"required":   f.Required,
			"read_only":  f.ReadOnly,
			"max_length": f.MaxLength,
			"custom":     f.Custom,
			"options":    strings.Join(f.Options, "|"),
		})
	}
	return columns, rows, true
}
