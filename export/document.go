// Package export 把布局结果转换成矢量导出文档，并负责其 SVG 序列化与加载。
package export

import (
	"unicode"

	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/layout"
)

// DefaultFontFamily 是交给渲染端依次尝试的字体回退链。
const DefaultFontFamily = "SimSun, STKaiti, KaiTi, serif"

// Background 描述自上而下的线性渐变；From == To 时等同纯色。
type Background struct {
	From layout.Color `json:"from"`
	To   layout.Color `json:"to"`
}

// Style 汇总导出时的文字与背景样式。
type Style struct {
	FontFamily string
	FontSize   float64 // px
	TextColor  layout.Color
	Background Background
}

// DefaultStyle 返回默认导出样式。
func DefaultStyle() Style {
	return Style{
		FontFamily: DefaultFontFamily,
		FontSize:   120,
		TextColor:  layout.MustColor("#1e293b"),
		Background: Background{
			From: layout.MustColor("#ffffff"),
			To:   layout.MustColor("#f8fafc"),
		},
	}
}

// Mark 是一个居中绘制的字形。
type Mark struct {
	Text     string  `json:"text"`
	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	FontSize float64 `json:"fontSize"`
}

// Document 是一次导出动作的不可变中间表示，矢量与位图导出共用。
type Document struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Background Background   `json:"background"`
	FontFamily string       `json:"fontFamily"`
	TextColor  layout.Color `json:"textColor"`
	Marks      []Mark       `json:"marks"`
}

// Build 为每个可绘制槽位生成一个字形标记，空白槽位只占宽度。
// 没有可绘制槽位时返回 ErrEmptyInput。
func Build(res *layout.Result, style Style) (*Document, error) {
	if res.DrawableCount() == 0 {
		return nil, core.Errorf(core.ErrEmptyInput, "export", nil)
	}
	if style.FontFamily == "" {
		style.FontFamily = DefaultFontFamily
	}
	centerY := res.TotalHeight / 2
	marks := make([]Mark, 0, len(res.Slots))
	for _, slot := range res.Slots {
		if slot.IsBlank {
			continue
		}
		marks = append(marks, Mark{
			Text:     markText(slot.Char),
			CenterX:  slot.CenterX(),
			CenterY:  centerY,
			FontSize: style.FontSize,
		})
	}
	return &Document{
		Width:      res.TotalWidth,
		Height:     res.TotalHeight,
		Background: style.Background,
		FontFamily: style.FontFamily,
		TextColor:  style.TextColor,
		Marks:      marks,
	}, nil
}

// 控制字符在 XML 中非法，统一替换为 U+FFFD。
func markText(r rune) string {
	if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
		return string(unicode.ReplacementChar)
	}
	return string(r)
}
