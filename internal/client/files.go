package client

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/zx06/zcrm/internal/codec"
	"github.com/zx06/zcrm/internal/errors"
	"github.com/zx06/zcrm/internal/zoho"
)

// UploadFileRequest 给记录附加文件或外部链接。
type UploadFileRequest struct {
	request
	path string
}

func (c *Client) UploadFile(module string) *UploadFileRequest {
	return &UploadFileRequest{request: newRequest(c, module, zoho.OpUploadFile)}
}

func (r *UploadFileRequest) ID(id string) *UploadFileRequest {
	r.set(ParamID, id)
	return r
}

// AttachLink 附加外部链接而不是文件内容。
func (r *UploadFileRequest) AttachLink(link string) *UploadFileRequest {
	r.set(ParamAttachmentURL, link)
	return r
}

// Content 以给定文件名上传 content 的内容。
func (r *UploadFileRequest) Content(name string, content io.Reader) *UploadFileRequest {
	r.params.Attachment = &codec.Attachment{Name: name, Content: content}
	return r
}

// FromPath 在 Do 时打开并上传本地文件，调用结束后关闭。
func (r *UploadFileRequest) FromPath(path string) *UploadFileRequest {
	r.path = path
	return r
}

func (r *UploadFileRequest) Do(ctx context.Context) (zoho.MutationResult, error) {
	r.require(ParamID)
	if r.path != "" && r.err == nil {
		f, err := os.Open(r.path)
		if err != nil {
			return zoho.MutationResult{}, errors.Wrap(errors.CodeCfgInvalid, "failed to open upload file", map[string]any{"path": r.path}, err)
		}
		defer f.Close()
		r.Content(filepath.Base(r.path), f)
	}
	if r.params.Attachment == nil && r.params.Values[ParamAttachmentURL] == "" {
		r.fail("either file content or an attachment link is required", map[string]any{"operation": string(r.op)})
	}
	return r.mutation(ctx)
}

// DownloadFileRequest 下载附件到本地路径。
type DownloadFileRequest struct{ request }

func (c *Client) DownloadFile(module string) *DownloadFileRequest {
	return &DownloadFileRequest{newRequest(c, module, zoho.OpDownloadFile)}
}

func (r *DownloadFileRequest) ID(id string) *DownloadFileRequest {
	r.set(ParamID, id)
	return r
}

// SaveTo 设置落盘路径（不会发送给远端）。
func (r *DownloadFileRequest) SaveTo(path string) *DownloadFileRequest {
	r.params.FilePath = path
	return r
}

// Do 返回是否写入了非空内容。
func (r *DownloadFileRequest) Do(ctx context.Context) (bool, error) {
	r.require(ParamID)
	res, err := r.do(ctx)
	if err != nil {
		return false, err
	}
	return res.AsDownload()
}

// DeleteFileRequest 删除附件。
type DeleteFileRequest struct{ request }

func (c *Client) DeleteFile(module string) *DeleteFileRequest {
	return &DeleteFileRequest{newRequest(c, module, zoho.OpDeleteFile)}
}

func (r *DeleteFileRequest) ID(id string) *DeleteFileRequest {
	r.set(ParamID, id)
	return r
}

func (r *DeleteFileRequest) Do(ctx context.Context) (zoho.MutationResult, error) {
	r.require(ParamID)
	return r.mutation(ctx)
}
