package codec

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/zoho"
)

// Encode 将记录编码为 Zoho 请求 XML：
//
//	<Module><row no="1"><FL val="Field">value</FL>...</row>...</Module>
//
// 嵌套值递归写成 <tag no="N"> 子节点，深度不限。
func Encode(module string, records []zoho.Record) (string, error) {
	if !validName(module) {
		return "", errors.New(errors.CodeEncodeFailed, "invalid module name", map[string]any{"module": module})
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(module)
	for i, r := range records {
		row := root.CreateElement("row")
		row.CreateAttr("no", strconv.Itoa(i+1))
		for key, v := range r.All() {
			if err := encodeField(row, key, v); err != nil {
				return "", errors.Wrap(errors.CodeEncodeFailed, "failed to encode record",
					map[string]any{"module": module, "row": i + 1, "field": key}, err)
			}
		}
	}

	s, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(errors.CodeEncodeFailed, "failed to serialize request xml", map[string]any{"module": module}, err)
	}
	return s, nil
}

func encodeField(parent *etree.Element, key string, v zoho.Value) error {
	if err := checkText(key); err != nil {
		return fmt.Errorf("field name %q: %w", key, err)
	}
	fl := parent.CreateElement("FL")
	fl.CreateAttr("val", key)
	if v.IsNested() {
		return encodeNested(fl, v)
	}
	text := v.Text()
	if err := checkText(text); err != nil {
		return fmt.Errorf("value of %q: %w", key, err)
	}
	fl.SetText(text)
	return nil
}

// encodeNested 写出嵌套列表的条目：嵌套条目成为以其标签命名、no 为位置的子节点，
// 其余条目成为 FL 叶子。
func encodeNested(parent *etree.Element, v zoho.Value) error {
	for i, e := range v.Entries() {
		if !e.Value.IsNested() {
			if err := encodeField(parent, e.Key, e.Value); err != nil {
				return err
			}
			continue
		}
		if err := encodeNode(parent, e.Value.ElementTag(), i+1, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeNode(parent *etree.Element, tag string, no int, v zoho.Value) error {
	if !validName(tag) {
		return fmt.Errorf("invalid element name %q", tag)
	}
	sub := parent.CreateElement(tag)
	sub.CreateAttr("no", strconv.Itoa(no))
	return encodeNested(sub, v)
}

// validName 是 XML Name 的保守子集（不允许冒号，避免被当成命名空间前缀）。
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

func checkText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("invalid utf-8")
	}
	for i, r := range s {
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in xml", r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
