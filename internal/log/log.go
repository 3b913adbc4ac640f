package log

import (
	"io"
	"log/slog"
)

// New 返回写入到 w 的 slog.Logger（默认 level=INFO，verbose 时为 DEBUG）。
// 注意：stdout=数据，日志应始终写 stderr（由调用方传入）。
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Discard 返回丢弃所有输出的 logger，用于未注入 logger 的组件。
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
