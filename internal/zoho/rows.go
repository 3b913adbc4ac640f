package zoho

import (
	"iter"
	"strconv"
)

// Rows 是按行号（从 1 开始，字符串形式）索引的有序结果集。
// 顺序为文档顺序；重复行号覆盖旧值并保留原位置。
type Rows[T any] struct {
	keys  []string
	items map[string]T
}

func NewRows[T any]() *Rows[T] {
	return &Rows[T]{items: map[string]T{}}
}

func (r *Rows[T]) Set(pos string, item T) {
	if r.items == nil {
		r.items = map[string]T{}
	}
	if _, ok := r.items[pos]; !ok {
		r.keys = append(r.keys, pos)
	}
	r.items[pos] = item
}

func (r *Rows[T]) Get(pos string) (T, bool) {
	if r == nil {
		var zero T
		return zero, false
	}
	item, ok := r.items[pos]
	return item, ok
}

// At 按整数行号取值。
func (r *Rows[T]) At(row int) (T, bool) {
	return r.Get(strconv.Itoa(row))
}

func (r *Rows[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *Rows[T]) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Rows[T]) Values() []T {
	if r == nil {
		return nil
	}
	out := make([]T, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.items[k])
	}
	return out
}

func (r *Rows[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.items[k]) {
				return
			}
		}
	}
}

type tableRower interface {
	TableRow() ([]string, map[string]any)
}

// ToTableData 汇总所有行的列（按首次出现顺序），并在首列放行号。
func (r *Rows[T]) ToTableData() ([]string, []map[string]any, bool) {
	columns := []string{"row"}
	seen := map[string]bool{"row": true}
	rows := make([]map[string]any, 0, r.Len())
	for pos, item := range r.All() {
		tr, ok := any(item).(tableRower)
		if !ok {
			return nil, nil, false
		}
		cols, values := tr.TableRow()
		row := make(map[string]any, len(values)+1)
		row["row"] = pos
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
			row[c] = values[c]
		}
		rows = append(rows, row)
	}
	return columns, rows, true
}
