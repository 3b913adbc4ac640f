// Package zoho 定义 Zoho CRM XML API 的领域数据：记录、字段描述、变更结果与错误。
package zoho

import (
	"strconv"
	"time"
)

// Kind 标识 Value 的变体。
type Kind uint8

const (
	KindScalar Kind = iota
	KindDateTime
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindDateTime:
		return "datetime"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

const (
	// DefaultTag 是未声明标签的子节点在请求 XML 中使用的元素名。
	DefaultTag = "null"

	// TypeKey 在 YAML/JSON 输入中声明子节点的元素名。
	TypeKey = "@type"

	// DateLayout 用于时间部分为零点的日期（MM/DD/YYYY）。
	DateLayout = "01/02/2006"
	// DateTimeLayout 用于带时间的日期（YYYY-MM-DD HH:mm:ss）。
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Value 是记录字段的值：标量、日期时间或嵌套列表（子表单/多选）。
// 零值是空字符串标量。
type Value struct {
	kind    Kind
	text    string
	time    time.Time
	tag     string
	entries []Entry
}

func String(s string) Value { return Value{kind: KindScalar, text: s} }

func Int(n int64) Value { return String(strconv.FormatInt(n, 10)) }

func Float(f float64) Value { return String(strconv.FormatFloat(f, 'f', -1, 64)) }

func Bool(b bool) Value { return String(strconv.FormatBool(b)) }

func Time(t time.Time) Value { return Value{kind: KindDateTime, time: t} }

// Nested 构造嵌套列表；tag 为空时编码使用 DefaultTag。
func Nested(tag string, entries ...Entry) Value {
	return Value{kind: KindNested, tag: tag, entries: normalize(entries)}
}

// List 是不带标签的 Nested。
func List(entries ...Entry) Value { return Nested("", entries...) }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNested() bool { return v.kind == KindNested }

// Text 返回线上格式的文本；嵌套值返回空串。
func (v Value) Text() string {
	switch v.kind {
	case KindScalar:
		return v.text
	case KindDateTime:
		return FormatTime(v.time)
	default:
		return ""
	}
}

func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDateTime {
		return time.Time{}, false
	}
	return v.time, true
}

// Tag 返回声明的标签（可能为空）。
func (v Value) Tag() string { return v.tag }

// ElementTag 返回编码时使用的元素名。
func (v Value) ElementTag() string {
	if v.tag == "" {
		return DefaultTag
	}
	return v.tag
}

func (v Value) Len() int { return len(v.entries) }

func (v Value) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Depth 返回嵌套层数：标量为 0。
func (v Value) Depth() int {
	if v.kind != KindNested {
		return 0
	}
	deepest := 0
	for _, e := range v.entries {
		if d := e.Value.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.text == o.text
	case KindDateTime:
		return v.time.Equal(o.time)
	}
	if v.tag != o.tag || len(v.entries) != len(o.entries) {
		return false
	}
	for i := range v.entries {
		if v.entries[i].Key != o.entries[i].Key || !v.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

// FormatTime 按 Zoho 约定格式化时间：零点只输出日期。
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}

// ParseTime 解析 DateTimeLayout 或 DateLayout 格式的本地时间。
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	if d, derr := time.ParseInLocation(DateLayout, s, time.Local); derr == nil {
		return d, nil
	}
	return time.Time{}, err
}
