package zoho

import "fmt"

// Error 是 Zoho 返回的 (code, message)，可作为顶层错误的 cause，也可挂在单行结果上。
type Error struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("zoho error %s: %s", e.Code, e.Message)
}
