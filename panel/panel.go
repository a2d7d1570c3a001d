// Package panel 为输入文本的每个非空白字符创建绘制句柄。
package panel

import (
	"errors"
	"fmt"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/layout"
)

// Item 对应输入中的一个码点。
type Item struct {
	Index       int
	Char        string
	ContainerID string
	Blank       bool
	Handle      anim.Handle // 空白或占位时为 nil
	Err         error       // 占位原因，归类为 core.ErrUnsupportedGlyph
	Placeholder string      // 后端写出的占位图路径，可为空
}

// Placeholder 的判断：非空白且没有句柄。
func (it Item) IsPlaceholder() bool { return !it.Blank && it.Handle == nil }

// Panel 是一次输入对应的字符面板。
type Panel struct {
	Text  string
	Items []Item
}

// PlaceholderWriter 由能绘制占位图的后端实现。
type PlaceholderWriter interface {
	WritePlaceholder(containerID string, opts anim.Options) (string, error)
}

// Build 逐个码点创建句柄。单个字符失败只影响它自己的槽位，其余字符照常创建。
func Build(backend anim.Backend, text string, opts anim.Options) *Panel {
	p := &Panel{Text: text}
	pw, _ := backend.(PlaceholderWriter)
	for i, tok := range layout.Tokenize(text) {
		item := Item{
			Index:       i,
			Char:        string(tok.Char),
			ContainerID: fmt.Sprintf("char-%d", i),
			Blank:       tok.Kind == layout.Blank,
		}
		if item.Blank {
			p.Items = append(p.Items, item)
			continue
		}
		h, err := backend.CreateHandle(item.ContainerID, item.Char, opts)
		if err == nil && h == nil {
			err = errors.New("后端返回了空句柄")
		}
		if err != nil {
			if !errors.Is(err, core.ErrUnsupportedGlyph) {
				err = &core.Error{Kind: core.ErrUnsupportedGlyph, Op: "create handle", Glyph: item.Char, Err: err}
			}
			item.Err = err
			core.Logger().Warn("无法为字符创建绘制句柄，使用占位", "char", item.Char, "index", i, "err", err)
			if pw != nil {
				path, perr := pw.WritePlaceholder(item.ContainerID, opts)
				if perr != nil {
					core.Logger().Warn("写出占位图失败", "char", item.Char, "err", perr)
				}
				item.Placeholder = path
			}
		} else {
			item.Handle = h
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// Handles 按输入顺序返回所有句柄。
func (p *Panel) Handles() []anim.Handle {
	if p == nil {
		return nil
	}
	var out []anim.Handle
	for _, it := range p.Items {
		if it.Handle != nil {
			out = append(out, it.Handle)
		}
	}
	return out
}

// Placeholders 返回无法创建句柄的字符。
func (p *Panel) Placeholders() []Item {
	if p == nil {
		return nil
	}
	var out []Item
	for _, it := range p.Items {
		if it.IsPlaceholder() {
			out = append(out, it)
		}
	}
	return out
}
