package errors

import (
	stderrors "errors"
	"fmt"
)

// Details 中的通用键；Zoho 相关错误至少带 DetailZohoCode 和 DetailOperation。
const (
	DetailZohoCode  = "zoho_code"
	DetailOperation = "operation"
	DetailModule    = "module"
	DetailProfile   = "profile"
	DetailPath      = "path"
)

// XError 是 zcrm 的结构化错误：稳定 Code、可读 Message、可选 Details。
// cause 只用于日志和 errors.Is/As，不进入输出 envelope。
type XError struct {
	Code    Code           `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	cause   error
}

func (e *XError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
}

func (e *XError) Unwrap() error { return e.cause }

// WithDetail 写入一个 detail 并返回 e 本身，Details 为 nil 时自动创建。
func (e *XError) WithDetail(key string, value any) *XError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// Detail 以字符串形式读取 detail，不存在或不是字符串时返回空串。
func (e *XError) Detail(key string) string {
	if e == nil {
		return ""
	}
	s, _ := e.Details[key].(string)
	return s
}

func New(code Code, message string, details map[string]any) *XError {
	return &XError{Code: code, Message: message, Details: details}
}

func Wrap(code Code, message string, details map[string]any, cause error) *XError {
	return &XError{Code: code, Message: message, Details: details, cause: cause}
}

func As(err error) (*XError, bool) {
	var xe *XError
	if stderrors.As(err, &xe) {
		return xe, true
	}
	return nil, false
}

// AsOrWrap 把任意 error 归一为 XError，非 XError 记为 CodeInternal。
func AsOrWrap(err error) *XError {
	if xe, ok := As(err); ok {
		return xe
	}
	return Wrap(CodeInternal, err.Error(), nil, err)
}

// HasCode 判断 err 链上是否存在指定 Code 的 XError。
func HasCode(err error, code Code) bool {
	xe, ok := As(err)
	return ok && xe.Code == code
}

// ZohoCode 返回 Zoho 错误码（如 4834、4422），err 不是 Zoho 返回的错误时为空。
func ZohoCode(err error) string {
	xe, ok := As(err)
	if !ok {
		return ""
	}
	return xe.Detail(DetailZohoCode)
}
