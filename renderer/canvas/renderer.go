package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/export"
	"github.com/ByLCY/bihua/fonts"
	"github.com/ByLCY/bihua/layout"
	"github.com/ByLCY/bihua/renderer"
)

// MIME 是位图产物的媒体类型。
const MIME = "image/png"

// canvas 的长度单位按 mm 处理，字号按 pt；这里令 1 个画布单位 = 1 px。
const unitToPt = 72.0 / 25.4

// Renderer 借助 tdewolff/canvas 把导出文档栅格化为 PNG。
type Renderer struct {
	fonts *fonts.Resolver

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily // by font name
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options 是位图渲染器的配置。
type Options struct {
	// Fonts 解析字体回退链，为空时使用系统字体目录。
	Fonts *fonts.Resolver
}

// NewRenderer 创建按系统字体目录查找字体的渲染器。
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions 使用指定的字体解析器创建渲染器。
func NewRendererWithOptions(opts Options) *Renderer {
	res := opts.Fonts
	if res == nil {
		res = fonts.NewResolver()
	}
	return &Renderer{
		fonts:    res,
		families: map[string]*canvas.FontFamily{},
	}
}

// Render 先把文档序列化为 SVG，再按图像源的方式加载并栅格化。
func (r *Renderer) Render(ctx context.Context, doc *export.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("导出文档为空")
	}
	return r.Rasterize(ctx, doc.MarshalSVG())
}

func (r *Renderer) MIME() string { return MIME }

func (r *Renderer) Ext() string { return ".png" }

type rasterResult struct {
	data []byte
	err  error
}

// Rasterize 加载 SVG 并输出 PNG 字节，直到完成、失败或 ctx 结束才返回。
// 每次调用只加载一次，不缓存中间画布。
func (r *Renderer) Rasterize(ctx context.Context, svg []byte) ([]byte, error) {
	ch := make(chan rasterResult, 1)
	go func() {
		data, err := r.rasterize(svg)
		ch <- rasterResult{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.data, res.err
	}
}

func (r *Renderer) rasterize(svg []byte) ([]byte, error) {
	doc, err := export.ParseSVG(svg)
	if err != nil {
		return nil, err
	}
	img, err := r.draw(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, core.Errorf(core.ErrEncode, "encode png", err)
	}
	return buf.Bytes(), nil
}

// draw 在 (0,0) 处绘制整张文档，画布尺寸与文档完全一致。
func (r *Renderer) draw(doc *export.Document) (img *image.RGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			img = nil
			err = core.Errorf(core.ErrRender, "draw", fmt.Errorf("%v", p))
		}
	}()

	family, err := r.fontFamily(doc.FontFamily)
	if err != nil {
		return nil, err
	}

	c := canvas.New(doc.Width, doc.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与 SVG 保持左上角为原点

	drawBackground(ctx, doc)

	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	for _, m := range doc.Marks {
		face := family.Face(m.FontSize*unitToPt, colorFromLayout(doc.TextColor), canvas.FontRegular, canvas.FontNormal)
		if r, ok := missingGlyph(face, m.Text); ok {
			return nil, &core.Error{
				Kind:  core.ErrRender,
				Op:    "draw",
				Glyph: string(r),
				Err:   fmt.Errorf("字体 %s 缺少字形 %q", family.Name(), r),
			}
		}
		line := canvas.NewTextLine(face, m.Text, canvas.Center)
		// dominant-baseline="central"：字面上下部的中点对齐 CenterY
		metrics := face.Metrics()
		baseline := m.CenterY + (metrics.Ascent-math.Abs(metrics.Descent))/2
		ctx.DrawText(m.CenterX, baseline, line)
	}

	out := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	want := image.Rect(0, 0, int(math.Ceil(doc.Width)), int(math.Ceil(doc.Height)))
	if out.Bounds().Size() != want.Size() {
		return nil, core.Errorf(core.ErrRender, "draw", fmt.Errorf("画布尺寸 %v 与文档尺寸 %v 不一致", out.Bounds().Size(), want.Size()))
	}
	return out, nil
}

// missingGlyph 返回字体中没有的第一个字符；空白不检查。
func missingGlyph(face *canvas.FontFace, text string) (rune, bool) {
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if face.Font.GlyphIndex(r) == 0 {
			return r, true
		}
	}
	return 0, false
}

// drawBackground 逐行插值绘制自上而下的线性渐变。
func drawBackground(ctx *canvas.Context, doc *export.Document) {
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	rows := int(math.Ceil(doc.Height))
	from, to := doc.Background.From, doc.Background.To
	if from == to || rows <= 1 {
		ctx.SetFillColor(colorFromLayout(from))
		ctx.DrawPath(0, 0, canvas.Rectangle(doc.Width, doc.Height))
		return
	}
	for y := 0; y < rows; y++ {
		t := float64(y) / float64(rows-1)
		ctx.SetFillColor(lerp(from, to, t))
		ctx.DrawPath(0, float64(y), canvas.Rectangle(doc.Width, 1))
	}
}

func (r *Renderer) fontFamily(chain string) (*canvas.FontFamily, error) {
	font := r.fonts.Resolve(chain)

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[font.Name]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(font.Name)
	if err := family.LoadFont(font.Data, 0, canvas.FontRegular); err != nil {
		if !font.System {
			return nil, core.Errorf(core.ErrRender, "load font", err)
		}
		core.Logger().Warn("系统字体无法加载，改用内置字体", "font", font.Name, "err", err)
		fallback, err := r.builtinFamily()
		if err != nil {
			return nil, err
		}
		r.families[font.Name] = fallback
		return fallback, nil
	}
	r.families[font.Name] = family
	return family, nil
}

// builtinFamily 调用方需持有 fontMu。
func (r *Renderer) builtinFamily() (*canvas.FontFamily, error) {
	if family, ok := r.families[fonts.BuiltinName]; ok {
		return family, nil
	}
	builtin := fonts.Builtin()
	family := canvas.NewFontFamily(builtin.Name)
	if err := family.LoadFont(builtin.Data, 0, canvas.FontRegular); err != nil {
		return nil, core.Errorf(core.ErrRender, "load font", err)
	}
	r.families[builtin.Name] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func lerp(a, b layout.Color, t float64) color.Color {
	mix := func(x, y int) float64 { return (float64(x) + (float64(y)-float64(x))*t) / 255.0 }
	return canvas.RGBA(mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 1.0)
}
