package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/layout"
)

const gradientID = "bgGradient"

// MarshalSVG 序列化为独立的 SVG 文本。输出只取决于文档内容，相同输入逐字节相同。
func (d *Document) MarshalSVG() []byte {
	var b bytes.Buffer
	w, h := num(d.Width), num(d.Height)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, w, h, w, h)
	b.WriteString("\n  <defs>\n")
	fmt.Fprintf(&b, `    <linearGradient id="%s" x1="0%%" y1="0%%" x2="0%%" y2="100%%">`, gradientID)
	b.WriteString("\n")
	fmt.Fprintf(&b, `      <stop offset="0%%" stop-color="%s"/>`, d.Background.From.Hex())
	b.WriteString("\n")
	fmt.Fprintf(&b, `      <stop offset="100%%" stop-color="%s"/>`, d.Background.To.Hex())
	b.WriteString("\n    </linearGradient>\n  </defs>\n")
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="url(#%s)"/>`, gradientID)
	b.WriteString("\n")
	family := escape(d.FontFamily)
	fill := d.TextColor.Hex()
	for _, m := range d.Marks {
		fmt.Fprintf(&b, `  <text x="%s" y="%s" font-family="%s" font-size="%s" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`,
			num(m.CenterX), num(m.CenterY), family, num(m.FontSize), fill, escape(m.Text))
		b.WriteString("\n")
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

// svgRoot 只覆盖 MarshalSVG 产出的元素子集。
type svgRoot struct {
	XMLName xml.Name  `xml:"svg"`
	Width   string    `xml:"width,attr"`
	Height  string    `xml:"height,attr"`
	ViewBox string    `xml:"viewBox,attr"`
	Defs    svgDefs   `xml:"defs"`
	Rects   []svgRect `xml:"rect"`
	Texts   []svgText `xml:"text"`
}

type svgDefs struct {
	Gradients []svgGradient `xml:"linearGradient"`
}

type svgGradient struct {
	ID    string    `xml:"id,attr"`
	Stops []svgStop `xml:"stop"`
}

type svgStop struct {
	Offset string `xml:"offset,attr"`
	Color  string `xml:"stop-color,attr"`
}

type svgRect struct {
	Fill string `xml:"fill,attr"`
}

type svgText struct {
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	FontFamily string `xml:"font-family,attr"`
	FontSize   string `xml:"font-size,attr"`
	Fill       string `xml:"fill,attr"`
	Value      string `xml:",chardata"`
}

// ParseSVG 把 SVG 文本加载回导出文档；标记不完整或数值非法时返回 ErrRender。
func ParseSVG(data []byte) (*Document, error) {
	var root svgRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, core.Errorf(core.ErrRender, "load svg", err)
	}
	width, err := parseNum("width", root.Width)
	if err != nil {
		return nil, core.Errorf(core.ErrRender, "load svg", err)
	}
	height, err := parseNum("height", root.Height)
	if err != nil {
		return nil, core.Errorf(core.ErrRender, "load svg", err)
	}
	if width <= 0 || height <= 0 {
		return nil, core.Errorf(core.ErrRender, "load svg", fmt.Errorf("画布尺寸无效：%gx%g", width, height))
	}
	doc := &Document{Width: width, Height: height}

	bg, err := root.background()
	if err != nil {
		return nil, core.Errorf(core.ErrRender, "load svg", err)
	}
	doc.Background = bg

	for i, t := range root.Texts {
		x, errX := parseNum("x", t.X)
		y, errY := parseNum("y", t.Y)
		size, errS := parseNum("font-size", t.FontSize)
		if errX != nil || errY != nil || errS != nil {
			return nil, core.Errorf(core.ErrRender, "load svg", fmt.Errorf("第 %d 个 text 节点属性非法", i))
		}
		fill, err := layout.ParseColor(t.Fill)
		if err != nil {
			return nil, core.Errorf(core.ErrRender, "load svg", err)
		}
		if i == 0 {
			doc.FontFamily = t.FontFamily
			doc.TextColor = fill
		}
		doc.Marks = append(doc.Marks, Mark{Text: t.Value, CenterX: x, CenterY: y, FontSize: size})
	}
	return doc, nil
}

func (r *svgRoot) background() (Background, error) {
	white := layout.Color{R: 255, G: 255, B: 255}
	if len(r.Rects) == 0 {
		return Background{From: white, To: white}, nil
	}
	fill := strings.TrimSpace(r.Rects[0].Fill)
	if strings.HasPrefix(fill, "url(#") && strings.HasSuffix(fill, ")") {
		id := strings.TrimSuffix(strings.TrimPrefix(fill, "url(#"), ")")
		for _, g := range r.Defs.Gradients {
			if g.ID != id {
				continue
			}
			if len(g.Stops) == 0 {
				return Background{}, fmt.Errorf("渐变 %s 缺少 stop", id)
			}
			from, err := layout.ParseColor(g.Stops[0].Color)
			if err != nil {
				return Background{}, err
			}
			to, err := layout.ParseColor(g.Stops[len(g.Stops)-1].Color)
			if err != nil {
				return Background{}, err
			}
			return Background{From: from, To: to}, nil
		}
		return Background{}, fmt.Errorf("找不到渐变 %s", id)
	}
	c, err := layout.ParseColor(fill)
	if err != nil {
		return Background{}, err
	}
	return Background{From: c, To: c}, nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func parseNum(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0, fmt.Errorf("属性 %s=%q 不是数值", name, v)
	}
	return f, nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
