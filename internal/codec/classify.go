package codec

import (
	"github.com/beevik/etree"

	"github.com/zx06/zcrm/internal/zoho"
)

// call 保存一次解码所需的全部状态，随调用创建、随调用丢弃。
type call struct {
	module string
	op     zoho.Operation
	params Params
	raw    []byte
	root   *etree.Element
	sink   Sink
}

// route 是 (谓词, 解码器) 对；routes 按优先级排列，首个匹配者生效。
// raw 路由在 XML 解析之前判定。
type route struct {
	name   string
	raw    bool
	match  func(*call) bool
	decode func(*call) (Result, error)
}

const (
	RouteDownload   = "download"
	RouteError      = "error"
	RouteNoData     = "nodata"
	RouteFields     = "fields"
	RouteDelete     = "delete_records"
	RouteUpload     = "upload_file"
	RouteDeleteFile = "delete_file"
	RouteDeletedIDs = "deleted_ids"
	RouteRecords    = "records"
	RouteMutations  = "mutations"
)

var routes = []route{
	{name: RouteDownload, raw: true, match: isOp(zoho.OpDownloadFile), decode: decodeDownload},
	{name: RouteError, match: hasChild("error"), decode: decodeVendorError},
	{name: RouteNoData, match: hasChild("nodata"), decode: decodeNoData},
	{name: RouteFields, match: isOp(zoho.OpGetFields), decode: decodeFields},
	{name: RouteDelete, match: isOp(zoho.OpDeleteRecords), decode: decodeDeleteRecords},
	{name: RouteUpload, match: isOp(zoho.OpUploadFile), decode: decodeUploadFile},
	{name: RouteDeleteFile, match: isOp(zoho.OpDeleteFile), decode: decodeDeleteFile},
	{name: RouteDeletedIDs, match: isOp(zoho.OpGetDeletedRecordIDs), decode: decodeDeletedIDs},
	{name: RouteRecords, match: hasModuleResult, decode: decodeRecords},
	{name: RouteMutations, match: hasRowOutcome, decode: decodeMutations},
}

// Classify 返回应处理该响应的路由名；root 为 nil 时只判定 raw 路由。
// 没有匹配时返回空串。
func Classify(module string, op zoho.Operation, root *etree.Element) string {
	c := &call{module: module, op: op, root: root}
	for _, rt := range routes {
		if !rt.raw && root == nil {
			break
		}
		if rt.match(c) {
			return rt.name
		}
	}
	return ""
}

func isOp(op zoho.Operation) func(*call) bool {
	return func(c *call) bool { return c.op == op }
}

func hasChild(tag string) func(*call) bool {
	return func(c *call) bool { return c.root.SelectElement(tag) != nil }
}

func hasModuleResult(c *call) bool {
	return child(c.root, "result", c.module) != nil
}

func hasRowOutcome(c *call) bool {
	result := c.root.SelectElement("result")
	if result == nil {
		return false
	}
	for _, row := range result.SelectElements("row") {
		if row.SelectElement("success") != nil || row.SelectElement("error") != nil {
			return true
		}
	}
	return false
}

// child 逐级选取子元素，任一级缺失返回 nil。
func child(el *etree.Element, path ...string) *etree.Element {
	for _, tag := range path {
		if el == nil {
			return nil
		}
		el = el.SelectElement(tag)
	}
	return el
}

func textAt(el *etree.Element, path ...string) string {
	if c := child(el, path...); c != nil {
		return c.Text()
	}
	return ""
}
