package zoho

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRows_OrderAndOverwrite(t *testing.T) {
	rows := NewRows[string]()
	rows.Set("2", "b")
	rows.Set("1", "a")
	rows.Set("2", "c")

	keys := rows.Keys()
	if len(keys) != 2 || keys[0] != "2" || keys[1] != "1" {
		t.Fatalf("keys=%v want [2 1]", keys)
	}
	if v, _ := rows.Get("2"); v != "c" {
		t.Fatalf("row 2=%q want c", v)
	}
	if v, ok := rows.At(1); !ok || v != "a" {
		t.Fatalf("At(1)=%q,%v", v, ok)
	}
	vals := rows.Values()
	if strings.Join(vals, ",") != "c,a" {
		t.Fatalf("values=%v", vals)
	}
}

func TestRows_NilSafe(t *testing.T) {
	var rows *Rows[Record]
	if rows.Len() != 0 || rows.Keys() != nil || rows.Values() != nil {
		t.Fatal("nil rows should be empty")
	}
	if _, ok := rows.Get("1"); ok {
		t.Fatal("nil rows Get should be false")
	}
	for range rows.All() {
		t.Fatal("nil rows should not iterate")
	}
}

func TestRows_ToTableData(t *testing.T) {
	rows := NewRows[Record]()
	rows.Set("1", NewRecord(Field("Id", String("10")), Field("Name", String("A"))))
	rows.Set("2", NewRecord(Field("Id", String("11")), Field("Email", String("b@x"))))

	cols, data, ok := rows.ToTableData()
	if !ok {
		t.Fatal("expected table data")
	}
	if strings.Join(cols, ",") != "row,Id,Name,Email" {
		t.Fatalf("columns=%v", cols)
	}
	if len(data) != 2 || data[1]["row"] != "2" || data[1]["Email"] != "b@x" {
		t.Fatalf("data=%v", data)
	}

	plain := NewRows[int]()
	plain.Set("1", 1)
	if _, _, ok := plain.ToTableData(); ok {
		t.Fatal("rows of int have no table form")
	}
}

func TestRows_MarshalJSONKeepsOrder(t *testing.T) {
	rows := NewRows[MutationResult]()
	rows.Set("3", MutationResult{Row: 3, Code: "2001"})
	rows.Set("1", MutationResult{Row: 1, Code: "2000", Error: &Error{Code: "4835", Message: "dup"}})

	b, err := json.Marshal(rows)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Index(s, `"3"`) > strings.Index(s, `"1"`) {
		t.Fatalf("order not kept: %s", s)
	}
	if !strings.Contains(s, `"message":"dup"`) {
		t.Fatalf("missing error: %s", s)
	}
}

func TestRows_MarshalYAML(t *testing.T) {
	rows := NewRows[Record]()
	rows.Set("1", NewRecord(Field("Last Name", String("Smith"))))
	b, err := yaml.Marshal(rows)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Last Name: Smith") {
		t.Fatalf("yaml=%s", b)
	}
}
