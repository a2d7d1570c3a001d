// Package notify 负责向用户展示一次性的提示消息。
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ByLCY/bihua/core"
)

// Notifier 展示一条带等级的消息。实现需要允许并发调用。
type Notifier interface {
	Notify(message string, severity core.Severity)
}

// Func 让普通函数满足 Notifier。
type Func func(message string, severity core.Severity)

func (f Func) Notify(message string, severity core.Severity) { f(message, severity) }

// Log 把提示写入 slog；Logger 为 nil 时使用 core.Logger()。
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(message string, severity core.Severity) {
	logger := l.Logger
	if logger == nil {
		logger = core.Logger()
	}
	logger.Log(context.Background(), level(severity), message, "severity", severity.String())
}

func level(s core.Severity) slog.Level {
	switch s {
	case core.SeverityWarning:
		return slog.LevelWarn
	case core.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Message 是 Recorder 记录的一条提示。
type Message struct {
	Text     string
	Severity core.Severity
}

// Recorder 按顺序保存收到的提示。
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(message string, severity core.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Severity: severity})
}

// Messages 返回目前为止的全部提示副本。
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last 返回最近一条提示；没有时 ok 为 false。
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Multi 把提示依次转发给多个 Notifier。
type Multi []Notifier

func (m Multi) Notify(message string, severity core.Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}
