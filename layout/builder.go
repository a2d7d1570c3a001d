package layout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Tokenize 按码点切分文本，空白字符标记为 Blank，其余为 Drawable。
// 不合并多码点字形。
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text))
	for _, r := range text {
		kind := Drawable
		if unicode.IsSpace(r) {
			kind = Blank
		}
		tokens = append(tokens, Token{Char: r, Kind: kind})
	}
	return tokens
}

// Build 从左到右依次排列每个码点，槽位之间没有空隙也不重叠。
// 空输入返回零个槽位，TotalWidth 为 2*Padding；是否继续由调用方决定。
func Build(text string, opts Options) *Result {
	tokens := Tokenize(text)
	slots := make([]Slot, 0, len(tokens))
	cursorX := opts.Padding
	for i, tok := range tokens {
		width := opts.CharWidth
		if tok.Kind == Blank {
			width = opts.SpaceWidth
		}
		slots = append(slots, Slot{
			Index:   i,
			Char:    tok.Char,
			XOffset: cursorX,
			Width:   width,
			IsBlank: tok.Kind == Blank,
		})
		cursorX += width
	}
	return &Result{
		TotalWidth:  cursorX + opts.Padding,
		TotalHeight: opts.CharHeight + 2*opts.Padding,
		Padding:     opts.Padding,
		Slots:       slots,
	}
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（忽略透明度）。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r, errR := hexByte(strings.Repeat(string(value[0]), 2))
		g, errG := hexByte(strings.Repeat(string(value[1]), 2))
		b, errB := hexByte(strings.Repeat(string(value[2]), 2))
		if errR != nil || errG != nil || errB != nil {
			break
		}
		return Color{R: r, G: g, B: b}, nil
	case 6, 8:
		r, errR := hexByte(value[0:2])
		g, errG := hexByte(value[2:4])
		b, errB := hexByte(value[4:6])
		if errR != nil || errG != nil || errB != nil {
			break
		}
		return Color{R: r, G: g, B: b}, nil
	}
	return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
}

// MustColor 用于包内默认值，解析失败直接 panic。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex 返回小写的 #rrggbb 表示。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

func hexByte(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	return int(v), err
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
