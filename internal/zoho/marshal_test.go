package zoho

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecord_MarshalJSON(t *testing.T) {
	r := NewRecord(
		Field("Z", String("last")),
		Field("A", Time(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))),
		Field("Products", List(Field("1", Nested("product", Field("Qty", Int(2)))))),
	)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Z":"last","A":"05/01/2024","Products":{"1":{"@type":"product","Qty":"2"}}}`
	if string(b) != want {
		t.Fatalf("json=%s\nwant %s", b, want)
	}
}

func TestParseRecords_YAMLList(t *testing.T) {
	src := []byte(`
- Last Name: Smith
  Company: Acme
  Closing Date: 2024-06-30
  Call Time: 2024-06-30T09:15:00Z
  Annual Revenue: 1200.50
  Product Details:
    - "@type": product
      Product Id: "42"
      Quantity: 3
- Last Name: Doe
`)
	recs, err := ParseRecords(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d want 2", len(recs))
	}
	r := recs[0]
	keys := r.Keys()
	if keys[0] != "Last Name" || keys[5] != "Product Details" {
		t.Fatalf("keys=%v", keys)
	}
	if v, _ := r.Get("Closing Date"); v.Kind() != KindDateTime || v.Text() != "06/30/2024" {
		t.Errorf("Closing Date=%v (%s)", v.Text(), v.Kind())
	}
	if v, _ := r.Get("Call Time"); v.Text() != "2024-06-30 09:15:00" {
		t.Errorf("Call Time=%q", v.Text())
	}
	if r.Text("Annual Revenue") != "1200.50" {
		t.Errorf("Annual Revenue=%q", r.Text("Annual Revenue"))
	}
	pd, _ := r.Get("Product Details")
	item, ok := pd.Get("1")
	if !ok || item.ElementTag() != "product" {
		t.Fatalf("product item=%v ok=%v", item, ok)
	}
	if q, _ := item.Get("Quantity"); q.Text() != "3" {
		t.Errorf("Quantity=%q", q.Text())
	}
}

func TestParseRecords_JSONSingleRecord(t *testing.T) {
	recs, err := ParseRecords([]byte(`{"Subject": "Call back", "Due": null}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Text("Subject") != "Call back" || recs[0].Text("Due") != "" {
		t.Fatalf("recs=%v", recs)
	}
}

func TestParseRecords_Errors(t *testing.T) {
	cases := map[string]string{
		"scalar root":     "hello",
		"list of scalars": "- a\n- b\n",
		"broken yaml":     "a: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRecords([]byte(src)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	recs, err := ParseRecords([]byte(""))
	if err != nil || len(recs) != 0 {
		t.Fatalf("empty input: %v %v", recs, err)
	}
}
