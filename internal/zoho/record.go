package zoho

import "iter"

// Entry 是一个键值对。
type Entry struct {
	Key   string
	Value Value
}

func Field(key string, v Value) Entry { return Entry{Key: key, Value: v} }

// Record 是有序、不可变的字段集合。
type Record struct {
	entries []Entry
}

// NewRecord 按顺序构造记录；重复键后者覆盖前者，位置保持首次出现处。
func NewRecord(entries ...Entry) Record {
	return Record{entries: normalize(entries)}
}

func normalize(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		index[e.Key] = len(out)
		out = append(out, e)
	}
	return out
}

func (r Record) Len() int { return len(r.entries) }

func (r Record) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

func (r Record) Get(key string) (Value, bool) {
	for _, e := range r.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Text 返回字段文本；字段不存在时返回空串。
func (r Record) Text(key string) string {
	v, _ := r.Get(key)
	return v.Text()
}

func (r Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, e := range r.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (r Record) Equal(o Record) bool {
	if len(r.entries) != len(o.entries) {
		return false
	}
	for i := range r.entries {
		if r.entries[i].Key != o.entries[i].Key || !r.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

// TableRow 供表格/CSV 输出使用；嵌套值以 JSON 文本展示。
func (r Record) TableRow() ([]string, map[string]any) {
	row := make(map[string]any, len(r.entries))
	for _, e := range r.entries {
		if e.Value.IsNested() {
			b, _ := e.Value.MarshalJSON()
			row[e.Key] = string(b)
			continue
		}
		row[e.Key] = e.Value.Text()
	}
	return r.Keys(), row
}

// RecordBuilder 逐字段累积记录，语义与 NewRecord 相同。
type RecordBuilder struct {
	entries []Entry
}

func (b *RecordBuilder) Set(key string, v Value) *RecordBuilder {
	b.entries = append(b.entries, Entry{Key: key, Value: v})
	return b
}

func (b *RecordBuilder) Len() int { return len(normalize(b.entries)) }

func (b *RecordBuilder) Build() Record { return NewRecord(b.entries...) }
