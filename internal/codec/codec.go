// Package codec 在 Zoho CRM 的 XML 线上格式与领域类型之间转换，并把调用委托给传输层。
package codec

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/beevik/etree"

	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/log"
	"github.com/zx06/zcrm/internal/zoho"
)

// ParamXMLData 是承载编码后记录的请求参数名。
const ParamXMLData = "xmlData"

// Attachment 是 uploadFile 的文件内容。
type Attachment struct {
	Name    string
	Content io.Reader
}

// Request 是交给传输层的一次调用。
type Request struct {
	Module     string
	Operation  zoho.Operation
	Params     map[string]string
	Attachment *Attachment
}

// Transport 执行一次远程调用并返回原始响应体；错误原样向上传递。
type Transport interface {
	Call(ctx context.Context, req Request) ([]byte, error)
}

// Params 是一次调用的输入。Records 非 nil 时被编码进 xmlData；
// FilePath 是 downloadFile 的落盘路径，不会发送给远端。
type Params struct {
	Values     map[string]string
	Records    []zoho.Record
	FilePath   string
	Attachment *Attachment
}

// Codec 负责 encode → transport → classify → decode。
// 不保存调用间状态，可并发使用。
type Codec struct {
	transport Transport
	sink      Sink
	logger    *slog.Logger
}

type Option func(*Codec)

func WithSink(s Sink) Option {
	return func(c *Codec) { c.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

func New(t Transport, opts ...Option) *Codec {
	c := &Codec{
		transport: t,
		sink:      FileSink{},
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call 编码记录、调用传输层并解码响应。
func (c *Codec) Call(ctx context.Context, module string, op zoho.Operation, p Params) (Result, error) {
	values := make(map[string]string, len(p.Values)+1)
	maps.Copy(values, p.Values)
	if p.Records != nil {
		xml, err := Encode(module, p.Records)
		if err != nil {
			return Result{}, err
		}
		values[ParamXMLData] = xml
	}

	body, err := c.transport.Call(ctx, Request{
		Module:     module,
		Operation:  op,
		Params:     values,
		Attachment: p.Attachment,
	})
	if err != nil {
		return Result{}, err
	}
	return c.Decode(body, module, op, p)
}

// Decode 按路由表顺序选择解码器；没有匹配的路由时返回 MalformedResponse。
func (c *Codec) Decode(body []byte, module string, op zoho.Operation, p Params) (Result, error) {
	in := &call{module: module, op: op, params: p, raw: body, sink: c.sink}
	for _, rt := range routes {
		if !rt.raw && in.root == nil {
			root, xe := parse(body)
			if xe != nil {
				return Result{}, xe
			}
			in.root = root
		}
		if !rt.match(in) {
			continue
		}
		c.logger.Debug("decode response", "route", rt.name, "module", module, "operation", string(op))
		return rt.decode(in)
	}
	return Result{}, errors.New(errors.CodeMalformedResponse, "response does not contain expected fields",
		map[string]any{"module": module, "operation": string(op), "root": in.root.Tag})
}

func parse(body []byte) (*etree.Element, *errors.XError) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(errors.CodeMalformedResponse, "response is not well-formed xml", nil, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.CodeMalformedResponse, "response has no root element", nil)
	}
	// etree 接受多个根元素以及根外的文本，这里按 XML 文档规则拒绝
	if n := len(doc.ChildElements()); n != 1 {
		return nil, errors.New(errors.CodeMalformedResponse, "response must have exactly one root element",
			map[string]any{"roots": n})
	}
	for _, tok := range doc.Child {
		if cd, ok := tok.(*etree.CharData); ok && strings.TrimSpace(cd.Data) != "" {
			return nil, errors.New(errors.CodeMalformedResponse, "response has text outside the root element", nil)
		}
	}
	return root, nil
}
