// Package core 定义各组件共用的错误分类、通知等级与日志入口。
package core

import (
	"errors"
	"fmt"
)

// 错误分类。组件返回的错误均可通过 errors.Is 归入以下之一。
var (
	// ErrEmptyInput 表示导出或开始动画时没有任何可绘制字符。
	ErrEmptyInput = errors.New("输入为空")
	// ErrUnsupportedGlyph 表示绘制后端无法为某个字符创建句柄。
	ErrUnsupportedGlyph = errors.New("不支持的字符")
	// ErrRender 表示矢量文档无法作为图像源加载或绘制。
	ErrRender = errors.New("渲染失败")
	// ErrEncode 表示位图编码失败。
	ErrEncode = errors.New("编码失败")
	// ErrPlayback 表示某个句柄播放时报告错误。
	ErrPlayback = errors.New("播放失败")
	// ErrTimeout 表示单个句柄在限定时间内没有完成，总会与 ErrPlayback 一同出现。
	ErrTimeout = errors.New("播放超时")
	// ErrAbandoned 表示播放中的会话被新输入替换。
	ErrAbandoned = errors.New("会话已被替换")
	// ErrBusy 表示已有动画在播放。
	ErrBusy = errors.New("动画正在播放")
)

// Error 携带出错的操作与字符上下文。
type Error struct {
	Kind  error  // 上面的分类之一
	Op    string // 例如 "rasterize"、"play"
	Glyph string // 相关字符，可为空
	Err   error  // 底层错误，可为空
}

// Errorf 构造一个带分类的错误。
func Errorf(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Glyph != "" {
		msg = fmt.Sprintf("%s（字符 %q）", msg, e.Glyph)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Is 让 errors.Is(err, ErrRender) 之类的判断命中分类。
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// Severity 为通知边界使用的等级。
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// SeverityOf 把错误映射到通知等级：空输入只是提醒，其余都算错误。
func SeverityOf(err error) Severity {
	switch {
	case err == nil:
		return SeveritySuccess
	case errors.Is(err, ErrEmptyInput):
		return SeverityWarning
	default:
		return SeverityError
	}
}
