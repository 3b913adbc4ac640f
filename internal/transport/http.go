// Package transport 通过 HTTP 调用 Zoho CRM XML API，实现 codec.Transport。
package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zx06/zcrm/internal/codec"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/log"
)

const (
	ParamAuthToken = "authtoken"
	ParamScope     = "scope"

	// AttachmentField 是 uploadFile 中文件内容的 multipart 字段名。
	AttachmentField = "content"

	HeaderRequestID = "X-Request-ID"

	userAgent = "zcrm"

	// 错误详情里保留的响应体长度上限。
	bodySnippet = 512
)

// Dialer 可由 SSH 客户端提供，让请求经由跳板机发出。
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

type Options struct {
	Endpoint  string
	AuthToken string
	Scope     string
	Timeout   time.Duration
	Dialer    Dialer       // 可选
	Logger    *slog.Logger // 可选
}

// HTTP 把 codec.Request 发送为 POST {endpoint}/xml/{module}/{operation}。
// 不做重试。
type HTTP struct {
	endpoint string
	token    string
	scope    string
	client   *http.Client
	logger   *slog.Logger
}

var _ codec.Transport = (*HTTP)(nil)

func New(opts Options) (*HTTP, *errors.XError) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.New(errors.CodeCfgInvalid, "endpoint must be an absolute http(s) url", map[string]any{"endpoint": opts.Endpoint})
	}
	if opts.AuthToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "auth_token is required", nil)
	}

	client := &http.Client{Timeout: opts.Timeout}
	if opts.Dialer != nil {
		client.Transport = &http.Transport{
			DialContext:         opts.Dialer.DialContext,
			ForceAttemptHTTP2:   true,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &HTTP{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		token:    opts.AuthToken,
		scope:    opts.Scope,
		client:   client,
		logger:   logger,
	}, nil
}

// URL 返回某个模块操作的请求地址。
func (h *HTTP) URL(module, operation string) string {
	return h.endpoint + "/xml/" + url.PathEscape(module) + "/" + url.PathEscape(operation)
}

func (h *HTTP) Call(ctx context.Context, req codec.Request) ([]byte, error) {
	reqID := uuid.NewString()
	details := map[string]any{"request_id": reqID, "module": req.Module, "operation": string(req.Operation)}

	body, contentType, err := h.encodeBody(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransportFailed, "failed to build request body", details, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL(req.Module, string(req.Operation)), body)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransportFailed, "failed to build request", details, err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set(HeaderRequestID, reqID)

	start := time.Now()
	resp, err := h.client.Do(httpReq)
	if err != nil {
		h.logger.Debug("zoho request failed", "request_id", reqID, "operation", string(req.Operation), "error", err)
		return nil, errors.Wrap(errors.CodeTransportFailed, "request to zoho failed", details, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	h.logger.Debug("zoho request",
		"request_id", reqID,
		"module", req.Module,
		"operation", string(req.Operation),
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransportFailed, "failed to read zoho response", details, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details["status"] = resp.StatusCode
		details["body"] = snippet(data)
		return nil, errors.New(errors.CodeTransportFailed, "zoho returned http "+resp.Status, details)
	}
	return data, nil
}

// encodeBody 默认使用表单编码；带附件时使用 multipart，文件放在 content 字段。
func (h *HTTP) encodeBody(req codec.Request) (io.Reader, string, error) {
	values := url.Values{}
	for k, v := range req.Params {
		values.Set(k, v)
	}
	// 认证参数最后写入，调用参数不能覆盖
	values.Set(ParamAuthToken, h.token)
	if h.scope != "" {
		values.Set(ParamScope, h.scope)
	} else {
		values.Del(ParamScope)
	}
	if req.Attachment == nil {
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	part, err := w.CreateFormFile(AttachmentField, req.Attachment.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, req.Attachment.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// snippet 截取响应开头用于错误详情，截断点回退到 UTF-8 字符边界。
func snippet(b []byte) string {
	if len(b) <= bodySnippet {
		return string(b)
	}
	n := bodySnippet
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}
