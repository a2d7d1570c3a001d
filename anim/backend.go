// Package anim 定义绘制后端接口，并按顺序逐个播放字符动画。
package anim

import (
	"context"
	"time"

	"github.com/ByLCY/bihua/layout"
)

// Options 是创建句柄时传给绘制后端的配置，尺寸单位为 px。
type Options struct {
	Width                float64
	Height               float64
	Padding              float64
	StrokeColor          layout.Color
	RadicalColor         layout.Color
	OutlineColor         layout.Color
	ShowOutline          bool
	ShowCharacter        bool
	StrokeAnimationSpeed float64 // 1 为正常速度
	DelayBetweenStrokes  time.Duration
}

// DefaultOptions 返回动画面板的默认配置。
func DefaultOptions() Options {
	return Options{
		Width:                140,
		Height:               140,
		Padding:              10,
		StrokeColor:          layout.MustColor("#1e293b"),
		RadicalColor:         layout.MustColor("#667eea"),
		OutlineColor:         layout.MustColor("#cbd5e1"),
		ShowOutline:          true,
		ShowCharacter:        false,
		StrokeAnimationSpeed: 1,
		DelayBetweenStrokes:  100 * time.Millisecond,
	}
}

// Handle 是后端创建的不透明绘制句柄，只能整段播放。
type Handle interface {
	// Play 开始播放。返回的通道在播放结束时恰好收到一个值，nil 表示成功。
	Play(ctx context.Context) <-chan error
}

// Backend 为单个字符创建句柄。无法支持该字符时返回的错误应归类为
// core.ErrUnsupportedGlyph。
type Backend interface {
	CreateHandle(containerID, char string, opts Options) (Handle, error)
}
