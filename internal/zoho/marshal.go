package zoho

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

func writeObject(buf *bytes.Buffer, n int, key func(int) string, val func(int) ([]byte, error)) error {
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key(i))
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := val(i)
		if err != nil {
			return err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsNested() {
		return json.Marshal(v.Text())
	}
	entries := v.entries
	if v.tag != "" {
		entries = append([]Entry{{Key: TypeKey, Value: String(v.tag)}}, entries...)
	}
	var buf bytes.Buffer
	err := writeObject(&buf, len(entries),
		func(i int) string { return entries[i].Key },
		func(i int) ([]byte, error) { return entries[i].Value.MarshalJSON() })
	return buf.Bytes(), err
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	err := writeObject(&buf, len(r.entries),
		func(i int) string { return r.entries[i].Key },
		func(i int) ([]byte, error) { return r.entries[i].Value.MarshalJSON() })
	return buf.Bytes(), err
}

func (r *Rows[T]) MarshalJSON() ([]byte, error) {
	keys := r.Keys()
	var buf bytes.Buffer
	err := writeObject(&buf, len(keys),
		func(i int) string { return keys[i] },
		func(i int) ([]byte, error) { return json.Marshal(r.items[keys[i]]) })
	return buf.Bytes(), err
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func (v Value) yamlNode() *yaml.Node {
	if !v.IsNested() {
		return scalarNode(v.Text())
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if v.tag != "" {
		n.Content = append(n.Content, scalarNode(TypeKey), scalarNode(v.tag))
	}
	for _, e := range v.entries {
		n.Content = append(n.Content, scalarNode(e.Key), e.Value.yamlNode())
	}
	return n
}

func (v Value) MarshalYAML() (any, error) { return v.yamlNode(), nil }

func (r Record) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range r.entries {
		n.Content = append(n.Content, scalarNode(e.Key), e.Value.yamlNode())
	}
	return n, nil
}

func (r *Rows[T]) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for pos, item := range r.All() {
		child := &yaml.Node{}
		if err := child.Encode(item); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, scalarNode(pos), child)
	}
	return n, nil
}

// UnmarshalYAML 从映射节点读取记录，保持键顺序。
// 时间戳标量变为日期时间值；"@type" 声明子节点元素名；序列按位置编号。
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: record must be a mapping", node.Line)
	}
	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := valueFromNode(node.Content[i+1])
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Key: node.Content[i].Value, Value: v})
	}
	*r = NewRecord(entries...)
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return resolveAlias(n.Content[0])
	}
	return n
}

func valueFromNode(n *yaml.Node) (Value, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!timestamp":
			var t time.Time
			if err := n.Decode(&t); err != nil {
				return Value{}, err
			}
			return Time(t), nil
		case "!!null":
			return String(""), nil
		}
		return String(n.Value), nil
	case yaml.MappingNode:
		tag := ""
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if key == TypeKey {
				tag = resolveAlias(n.Content[i+1]).Value
				continue
			}
			v, err := valueFromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: key, Value: v})
		}
		return Nested(tag, entries...), nil
	case yaml.SequenceNode:
		entries := make([]Entry, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := valueFromNode(item)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: strconv.Itoa(i + 1), Value: v})
		}
		return List(entries...), nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

// ParseRecords 解析 YAML 或 JSON：记录列表，或单条记录。
func ParseRecords(b []byte) ([]Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	root := resolveAlias(&doc)
	switch root.Kind {
	case yaml.MappingNode:
		var r Record
		if err := r.UnmarshalYAML(root); err != nil {
			return nil, err
		}
		return []Record{r}, nil
	case yaml.SequenceNode:
		out := make([]Record, 0, len(root.Content))
		for _, item := range root.Content {
			var r Record
			if err := r.UnmarshalYAML(item); err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: expected a record or a list of records", root.Line)
	}
}
