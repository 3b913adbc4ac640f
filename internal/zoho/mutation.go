package zoho

// MutationResult 是单行写操作的结果。
// Code 仅为信息（"0" 通常表示成功）；是否成功只看 Error 是否为 nil。
type MutationResult struct {
	Row          int    `json:"row" yaml:"row"`
	Code         string `json:"code" yaml:"code"`
	Error        *Error `json:"error,omitempty" yaml:"error,omitempty"`
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedTime  string `json:"created_time,omitempty" yaml:"created_time,omitempty"`
	ModifiedTime string `json:"modified_time,omitempty" yaml:"modified_time,omitempty"`
	CreatedBy    string `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	ModifiedBy   string `json:"modified_by,omitempty" yaml:"modified_by,omitempty"`
}

func (m MutationResult) Success() bool { return m.Error == nil }

func (m MutationResult) TableRow() ([]string, map[string]any) {
	row := map[string]any{
		"success":       m.Success(),
		"code":          m.Code,
		"id":            m.ID,
		"created_time":  m.CreatedTime,
		"modified_time": m.ModifiedTime,
		"error":         "",
	}
	if m.Error != nil {
		row["error"] = m.Error.Message
	}
	return []string{"success", "code", "id", "created_time", "modified_time", "error"}, row
}

// DeletedIDs 是 getDeletedRecordIds 返回的伪记录，Row 固定为 1。
type DeletedIDs struct {
	Row int      `json:"row" yaml:"row"`
	IDs []string `json:"ids" yaml:"ids"`
}
