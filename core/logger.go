package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志记录；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置所有包共用的 logger。默认不输出任何日志，传 nil 恢复静默。
//
// 使用的级别：
//   - Debug：单个句柄开始/结束播放
//   - Info：会话替换、动画完成、文件写出
//   - Warn：字符占位、字体回退
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前 logger，可并发调用。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
