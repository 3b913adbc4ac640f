package codec

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/zoho"
)

type fakeTransport struct {
	mu    sync.Mutex
	reqs  []Request
	reply func(Request) ([]byte, error)
}

func (f *fakeTransport) Call(_ context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.reply(req)
}

func static(body string) *fakeTransport {
	return &fakeTransport{reply: func(Request) ([]byte, error) { return []byte(body), nil }}
}

// echoListing 把请求里的 xmlData 包装成 getRecords 形式的响应。
func echoListing(t *testing.T) *fakeTransport {
	return &fakeTransport{reply: func(req Request) ([]byte, error) {
		doc := etree.NewDocument()
		if err := doc.ReadFromString(req.Params[ParamXMLData]); err != nil {
			t.Errorf("request xml does not parse: %v", err)
			return nil, err
		}
		resp := etree.NewDocument()
		result := resp.CreateElement("response").CreateElement("result")
		result.AddChild(doc.Root().Copy())
		return resp.WriteToBytes()
	}}
}

func TestCodec_RoundTripScalars(t *testing.T) {
	in := []zoho.Record{
		zoho.NewRecord(
			zoho.Field("Last Name", zoho.String("O'Brien <ceo>")),
			zoho.Field("Company", zoho.String("Acme & Sons")),
			zoho.Field("Annual Revenue", zoho.Float(1250000.5)),
			zoho.Field("Email Opt Out", zoho.Bool(true)),
			zoho.Field("Description", zoho.String("line one\nline two")),
		),
		zoho.NewRecord(zoho.Field("Last Name", zoho.String("李雷"))),
	}
	res, err := New(echoListing(t)).Call(context.Background(), "Leads", zoho.OpGetRecords, Params{Records: in})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := res.AsRecords()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, rows.Values()); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestCodec_RoundTripDates(t *testing.T) {
	in := []zoho.Record{zoho.NewRecord(
		zoho.Field("Closing Date", zoho.Time(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))),
		zoho.Field("Call Start", zoho.Time(time.Date(2024, 7, 1, 14, 5, 9, 0, time.UTC))),
	)}
	res, err := New(echoListing(t)).Call(context.Background(), "Potentials", zoho.OpGetRecords, Params{Records: in})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := res.AsRecords()
	r, _ := rows.At(1)
	if got := r.Text("Closing Date"); got != "07/01/2024" {
		t.Errorf("Closing Date=%q", got)
	}
	if got := r.Text("Call Start"); got != "2024-07-01 14:05:09" {
		t.Errorf("Call Start=%q", got)
	}
}

func TestCodec_RoundTripNestedTwoLevels(t *testing.T) {
	in := []zoho.Record{zoho.NewRecord(
		zoho.Field("Subject", zoho.String("Quote")),
		zoho.Field("Product Details", zoho.List(
			zoho.Field("1", zoho.Nested("product",
				zoho.Field("Product Id", zoho.String("42")),
				zoho.Field("Quantity", zoho.String("3")),
			)),
			zoho.Field("2", zoho.Nested("product", zoho.Field("Product Id", zoho.String("43")))),
		)),
	)}
	res, err := New(echoListing(t)).Call(context.Background(), "Quotes", zoho.OpGetRecords, Params{Records: in})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := res.AsRecords()
	if diff := cmp.Diff(in, rows.Values()); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

// 解码端只还原两层嵌套，三层及以上的结构在读回时被截断。
func TestCodec_DecodeStopsAtTwoLevels(t *testing.T) {
	deep := zoho.List(zoho.Field("1", zoho.Nested("product",
		zoho.Field("1", zoho.Nested("part", zoho.Field("Serial", zoho.String("X1")))),
	)))
	in := []zoho.Record{zoho.NewRecord(zoho.Field("Product Details", deep))}

	xml, err := Encode("Quotes", in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(xml, `<part no="1"><FL val="Serial">X1</FL></part>`) {
		t.Fatalf("encoder should keep every level: %s", xml)
	}

	res, err := New(echoListing(t)).Call(context.Background(), "Quotes", zoho.OpGetRecords, Params{Records: in})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := res.AsRecords()
	r, _ := rows.At(1)
	got, _ := r.Get("Product Details")
	if got.Depth() != 2 {
		t.Fatalf("decoded depth=%d want 2", got.Depth())
	}
	if got.Equal(deep) {
		t.Fatal("three-level value should not survive decoding")
	}
}

func TestCodec_CallBuildsRequest(t *testing.T) {
	ft := static(`<response><result><row no="1"><success><code>2000</code></success></row></result></response>`)
	values := map[string]string{"wfTrigger": "true"}
	rec := []zoho.Record{zoho.NewRecord(zoho.Field("Last Name", zoho.String("Smith")))}

	_, err := New(ft).Call(context.Background(), "Leads", zoho.OpInsertRecords, Params{Values: values, Records: rec})
	if err != nil {
		t.Fatal(err)
	}
	if len(ft.reqs) != 1 {
		t.Fatalf("requests=%d", len(ft.reqs))
	}
	req := ft.reqs[0]
	if req.Module != "Leads" || req.Operation != zoho.OpInsertRecords {
		t.Fatalf("request=%+v", req)
	}
	if req.Params["wfTrigger"] != "true" || !strings.Contains(req.Params[ParamXMLData], `<FL val="Last Name">Smith</FL>`) {
		t.Fatalf("params=%v", req.Params)
	}
	if _, ok := values[ParamXMLData]; ok {
		t.Fatal("caller's values map must not be modified")
	}
}

func TestCodec_NoRecordsNoXMLData(t *testing.T) {
	ft := static(`<response><result><Leads/></result></response>`)
	if _, err := New(ft).Call(context.Background(), "Leads", zoho.OpGetRecords, Params{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := ft.reqs[0].Params[ParamXMLData]; ok {
		t.Fatal("xmlData should be absent")
	}
}

func TestCodec_EncodeFailureSkipsTransport(t *testing.T) {
	ft := static(`<response/>`)
	rec := []zoho.Record{zoho.NewRecord(zoho.Field("Name", zoho.String("\x00")))}
	_, err := New(ft).Call(context.Background(), "Leads", zoho.OpInsertRecords, Params{Records: rec})
	if !errors.HasCode(err, errors.CodeEncodeFailed) {
		t.Fatalf("err=%v", err)
	}
	if len(ft.reqs) != 0 {
		t.Fatal("transport should not be called")
	}
}

func TestCodec_TransportErrorPropagates(t *testing.T) {
	boom := errors.New(errors.CodeTransportFailed, "connection refused", nil)
	ft := &fakeTransport{reply: func(Request) ([]byte, error) { return nil, boom }}
	_, err := New(ft).Call(context.Background(), "Leads", zoho.OpGetRecords, Params{})
	if !stderrors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestCodec_DecodeIsIdempotent(t *testing.T) {
	c := New(nil)
	for _, tc := range []struct {
		body string
		op   zoho.Operation
	}{
		{recordsXML, zoho.OpGetRecords},
		{batchXML, zoho.OpInsertRecords},
		{fieldsXML, zoho.OpGetFields},
	} {
		module := "Leads"
		if tc.op == zoho.OpGetRecords {
			module = "Quotes"
		}
		first, err1 := c.Decode([]byte(tc.body), module, tc.op, Params{})
		second, err2 := c.Decode([]byte(tc.body), module, tc.op, Params{})
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: %v / %v", tc.op, err1, err2)
		}
		opts := cmp.AllowUnexported(zoho.Rows[zoho.Record]{}, zoho.Rows[zoho.MutationResult]{})
		if diff := cmp.Diff(first, second, opts); diff != "" {
			t.Fatalf("%s not idempotent:\n%s", tc.op, diff)
		}
	}
}

func TestCodec_ConcurrentCalls(t *testing.T) {
	ft := &fakeTransport{reply: func(req Request) ([]byte, error) {
		body := fmt.Sprintf(`<response><result><%s><row no="1"><FL val="Module">%s</FL></row></%s></result></response>`,
			req.Module, req.Module, req.Module)
		return []byte(body), nil
	}}
	c := New(ft)
	modules := []string{"Leads", "Contacts", "Accounts", "Deals", "Quotes", "Cases"}

	var wg sync.WaitGroup
	errs := make(chan error, len(modules)*10)
	for i := 0; i < 10; i++ {
		for _, m := range modules {
			wg.Add(1)
			go func(m string) {
				defer wg.Done()
				res, err := c.Call(context.Background(), m, zoho.OpGetRecords, Params{})
				if err != nil {
					errs <- err
					return
				}
				rows, _ := res.AsRecords()
				if r, _ := rows.At(1); r.Text("Module") != m {
					errs <- fmt.Errorf("module %s got %q", m, r.Text("Module"))
				}
			}(m)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestCodec_Download(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "contract.pdf")
	payload := "%PDF-1.4 binary\x00\x01"

	res, err := New(static(payload)).Call(context.Background(), "Leads", zoho.OpDownloadFile, Params{FilePath: dst})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := res.AsDownload()
	if err != nil || !ok {
		t.Fatalf("downloaded=%v err=%v", ok, err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != payload {
		t.Fatalf("content=%q", b)
	}
}

func TestCodec_DownloadEmptyBody(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "empty.bin")
	res, err := New(static("")).Call(context.Background(), "Leads", zoho.OpDownloadFile, Params{FilePath: dst})
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := res.AsDownload(); ok {
		t.Fatal("empty download should report false")
	}
}

func TestCodec_DownloadWithoutPath(t *testing.T) {
	ft := static("data")
	_, err := New(ft).Call(context.Background(), "Leads", zoho.OpDownloadFile, Params{})
	if !errors.HasCode(err, errors.CodeCfgInvalid) {
		t.Fatalf("err=%v", err)
	}
}

type recordingSink struct {
	path string
	data string
}

func (s *recordingSink) WriteFile(path string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.path, s.data = path, string(b)
	return int64(len(b)), nil
}

func TestCodec_DownloadUsesSink(t *testing.T) {
	sink := &recordingSink{}
	c := New(static("bytes"), WithSink(sink))
	if _, err := c.Call(context.Background(), "Leads", zoho.OpDownloadFile, Params{FilePath: "/virtual/a.txt"}); err != nil {
		t.Fatal(err)
	}
	if sink.path != "/virtual/a.txt" || sink.data != "bytes" {
		t.Fatalf("sink=%+v", sink)
	}
}

func TestResult_ShapeMismatch(t *testing.T) {
	r := Result{Shape: ShapeFields}
	if _, err := r.AsRecords(); !errors.HasCode(err, errors.CodeMalformedResponse) {
		t.Fatalf("err=%v", err)
	}
	if _, err := r.AsFields(); err != nil {
		t.Fatal(err)
	}
	if (Result{}).Data() != nil {
		t.Fatal("empty result should have no data")
	}
}
