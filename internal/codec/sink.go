package codec

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Sink 接收 downloadFile 的内容。
type Sink interface {
	WriteFile(path string, r io.Reader) (int64, error)
}

// FileSink 先写同目录临时文件，完整写入并关闭后再改名，失败时删除临时文件。
type FileSink struct {
	Perm fs.FileMode
}

func (s FileSink) WriteFile(path string, r io.Reader) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, err
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmp.Name())
	}()

	if n, err = io.Copy(tmp, r); err != nil {
		return n, err
	}
	if err = tmp.Sync(); err != nil {
		return n, err
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return n, err
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return n, err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, err
	}
	return n, nil
}
