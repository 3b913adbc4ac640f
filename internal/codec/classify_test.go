package codec

import (
	"testing"

	"github.com/beevik/etree"

	"github.com/zx06/zcrm/internal/zoho"
)

func rootOf(t *testing.T, body string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		t.Fatal(err)
	}
	return doc.Root()
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		op   zoho.Operation
		body string
		want string
	}{
		{"download wins over error", zoho.OpDownloadFile, `<response><error><code>1</code></error></response>`, RouteDownload},
		{"error before op routes", zoho.OpGetFields, `<response><error/></response>`, RouteError},
		{"nodata", zoho.OpGetRecords, `<response><nodata/></response>`, RouteNoData},
		{"fields", zoho.OpGetFields, `<Leads><section/></Leads>`, RouteFields},
		{"delete records", zoho.OpDeleteRecords, `<response><result><code>5000</code></result></response>`, RouteDelete},
		{"upload file", zoho.OpUploadFile, `<response><result/></response>`, RouteUpload},
		{"delete file", zoho.OpDeleteFile, `<response><success/></response>`, RouteDeleteFile},
		{"deleted ids", zoho.OpGetDeletedRecordIDs, `<response><result><DeletedIDs/></result></response>`, RouteDeletedIDs},
		{"records", zoho.OpGetRecords, `<response><result><Leads/></result></response>`, RouteRecords},
		{"records for search", zoho.OpSearchRecords, `<response><result><Leads/></result></response>`, RouteRecords},
		{"module result beats row outcome", zoho.OpInsertRecords,
			`<response><result><Leads/><row no="1"><success/></row></result></response>`, RouteRecords},
		{"mutations success", zoho.OpInsertRecords, `<response><result><row no="1"><success/></row></result></response>`, RouteMutations},
		{"mutations error only", zoho.OpUpdateRecords, `<response><result><row no="1"><error/></row></result></response>`, RouteMutations},
		{"other module", zoho.OpGetRecords, `<response><result><Contacts/></result></response>`, ""},
		{"nothing", zoho.OpGetRecords, `<response/>`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify("Leads", tc.op, rootOf(t, tc.body)); got != tc.want {
				t.Fatalf("Classify=%q want %q", got, tc.want)
			}
		})
	}
}

func TestClassify_NilRootOnlyRawRoutes(t *testing.T) {
	if got := Classify("Leads", zoho.OpDownloadFile, nil); got != RouteDownload {
		t.Fatalf("download=%q", got)
	}
	if got := Classify("Leads", zoho.OpGetRecords, nil); got != "" {
		t.Fatalf("getRecords=%q", got)
	}
}

func TestRoutes_Order(t *testing.T) {
	want := []string{
		RouteDownload, RouteError, RouteNoData, RouteFields, RouteDelete, RouteUpload,
		RouteDeleteFile, RouteDeletedIDs, RouteRecords, RouteMutations,
	}
	if len(routes) != len(want) {
		t.Fatalf("routes=%d want %d", len(routes), len(want))
	}
	for i, rt := range routes {
		if rt.name != want[i] {
			t.Errorf("routes[%d]=%s want %s", i, rt.name, want[i])
		}
		if rt.raw != (i == 0) {
			t.Errorf("routes[%d].raw=%v", i, rt.raw)
		}
	}
}
