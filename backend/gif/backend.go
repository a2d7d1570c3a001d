// Package gifbackend 是 anim.Backend 的一个实现：按笔顺把字符绘制成 GIF 动画。
package gifbackend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/fonts"
	"github.com/ByLCY/bihua/layout"
	"github.com/ByLCY/bihua/strokedata"
)

// DefaultStrokeDuration 是速度为 1 时单笔的绘制时长。
const DefaultStrokeDuration = 400 * time.Millisecond

// 最后一帧停留时长（1/100 秒）。
const holdDelay = 100

// Options 是 GIF 后端的配置。
type Options struct {
	Source         strokedata.Source
	OutDir         string
	Realtime       bool          // 按动画时长挂起 Play，模拟页面上的实际播放
	StrokeDuration time.Duration // 为 0 时使用 DefaultStrokeDuration
}

// Backend 为每个字符创建一个 GIF 句柄。
type Backend struct {
	source         strokedata.Source
	outDir         string
	realtime       bool
	strokeDuration time.Duration
}

var _ anim.Backend = (*Backend)(nil)

// New 创建 GIF 后端。
func New(opts Options) *Backend {
	d := opts.StrokeDuration
	if d <= 0 {
		d = DefaultStrokeDuration
	}
	return &Backend{
		source:         opts.Source,
		outDir:         opts.OutDir,
		realtime:       opts.Realtime,
		strokeDuration: d,
	}
}

// CreateHandle 读取笔画数据并预解析路径；数据缺失或路径非法时返回 ErrUnsupportedGlyph。
func (b *Backend) CreateHandle(containerID, char string, opts anim.Options) (anim.Handle, error) {
	if b.source == nil {
		return nil, fmt.Errorf("gif 后端缺少笔画数据源")
	}
	data, err := b.source.Character(char)
	if err != nil {
		return nil, err
	}
	paths := make([]*canvas.Path, len(data.Strokes))
	for i, s := range data.Strokes {
		p, err := canvas.ParseSVGPath(s)
		if err != nil {
			return nil, &core.Error{Kind: core.ErrUnsupportedGlyph, Op: "parse stroke", Glyph: char, Err: err}
		}
		paths[i] = p
	}
	return &Handle{
		backend:     b,
		containerID: containerID,
		char:        data,
		paths:       paths,
		opts:        opts,
	}, nil
}

// Handle 是单个字符的 GIF 动画。
type Handle struct {
	backend     *Backend
	containerID string
	char        *strokedata.Character
	paths       []*canvas.Path
	opts        anim.Options
}

// Path 返回 Play 写出的文件路径。
func (h *Handle) Path() string {
	return filepath.Join(h.backend.outDir, h.containerID+".gif")
}

// Play 渲染并写出 GIF；Realtime 时再挂起整段动画时长。完成通道带缓冲，放弃跟踪也不会阻塞。
func (h *Handle) Play(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.play(ctx) }()
	return done
}

func (h *Handle) play(ctx context.Context) error {
	g, err := h.Animation()
	if err != nil {
		return err
	}
	if err := writeGIF(h.Path(), g); err != nil {
		return err
	}
	core.Logger().Debug("笔顺动画已写出", "char", h.char.Char, "path", h.Path())
	if !h.backend.realtime {
		return ctx.Err()
	}
	timer := time.NewTimer(h.Duration())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// strokeDelay 返回单笔帧的时长：绘制时长按速度缩放，再加笔画间隔。
func (h *Handle) strokeDelay() time.Duration {
	speed := h.opts.StrokeAnimationSpeed
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(h.backend.strokeDuration)/speed) + h.opts.DelayBetweenStrokes
}

// Duration 返回整段动画（不含末帧停留）的时长。
func (h *Handle) Duration() time.Duration {
	return h.opts.DelayBetweenStrokes + time.Duration(len(h.paths))*h.strokeDelay()
}

// Animation 生成全部帧：第 0 帧只有轮廓/底字，第 k 帧画出前 k 笔。
func (h *Handle) Animation() (*gif.GIF, error) {
	out := &gif.GIF{}
	for k := 0; k <= len(h.paths); k++ {
		frame, err := h.frame(k)
		if err != nil {
			return nil, err
		}
		delay := centis(h.strokeDelay())
		switch {
		case k == 0:
			delay = centis(h.opts.DelayBetweenStrokes)
		case k == len(h.paths):
			delay = holdDelay
		}
		out.Image = append(out.Image, frame)
		out.Delay = append(out.Delay, delay)
	}
	return out, nil
}

func (h *Handle) frame(k int) (img *image.Paletted, err error) {
	defer func() {
		if p := recover(); p != nil {
			img = nil
			err = &core.Error{Kind: core.ErrPlayback, Op: "draw frame", Glyph: h.char.Char, Err: fmt.Errorf("%v", p)}
		}
	}()

	c, ctx := newCanvas(h.opts)
	m := h.transform()
	if h.opts.ShowOutline {
		ctx.SetFillColor(colorFromLayout(h.opts.OutlineColor))
		for _, p := range h.paths {
			ctx.DrawPath(0, 0, p.Transform(m))
		}
	}
	if h.opts.ShowCharacter {
		ctx.SetFillColor(colorFromLayout(h.opts.StrokeColor))
		for _, p := range h.paths {
			ctx.DrawPath(0, 0, p.Transform(m))
		}
	}
	for i := 0; i < k; i++ {
		fill := h.opts.StrokeColor
		if h.char.IsRadical(i) {
			fill = h.opts.RadicalColor
		}
		ctx.SetFillColor(colorFromLayout(fill))
		ctx.DrawPath(0, 0, h.paths[i].Transform(m))
	}
	return toPaletted(c), nil
}

// transform 把 1024 方框（y 向上、下移 124）缩放进去掉内边距的区域并居中。
func (h *Handle) transform() canvas.Matrix {
	w := h.opts.Width - 2*h.opts.Padding
	ht := h.opts.Height - 2*h.opts.Padding
	size := math.Max(math.Min(w, ht), 1)
	scale := size / strokedata.BoxSize
	dx := h.opts.Padding + (w-size)/2
	dy := h.opts.Padding + (ht-size)/2
	return canvas.Identity.Translate(dx, dy).Scale(scale, scale).Translate(0, strokedata.YOffset)
}

// WritePlaceholder 为无法加载的字符写出一张静态占位图。
func (b *Backend) WritePlaceholder(containerID string, opts anim.Options) (string, error) {
	c, ctx := newCanvas(opts)
	family := canvas.NewFontFamily(fonts.BuiltinName)
	builtin := fonts.Builtin()
	if err := family.LoadFont(builtin.Data, 0, canvas.FontRegular); err != nil {
		return "", fmt.Errorf("加载内置字体失败: %w", err)
	}
	face := family.Face(14*layout.PxToPt, colorFromLayout(layout.MustColor("#ef4444")), canvas.FontRegular, canvas.FontNormal)
	ctx.SetCoordSystem(canvas.CartesianIV)
	cx, cy := opts.Width/2, opts.Height/2
	lineHeight := face.Metrics().LineHeight
	ctx.DrawText(cx, cy, canvas.NewTextLine(face, "Unable to load", canvas.Center))
	ctx.DrawText(cx, cy+lineHeight, canvas.NewTextLine(face, "this character", canvas.Center))

	path := filepath.Join(b.outDir, containerID+".gif")
	frame := toPaletted(c)
	if err := writeGIF(path, &gif.GIF{Image: []*image.Paletted{frame}, Delay: []int{0}}); err != nil {
		return "", err
	}
	return path, nil
}

func newCanvas(opts anim.Options) (*canvas.Canvas, *canvas.Context) {
	c := canvas.New(opts.Width, opts.Height)
	ctx := canvas.NewContext(c)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(opts.Width, opts.Height))
	return c, ctx
}

func toPaletted(c *canvas.Canvas) *image.Paletted {
	src := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	dst := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, src.Bounds().Min)
	return dst
}

func writeGIF(path string, g *gif.GIF) error {
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return &core.Error{Kind: core.ErrEncode, Op: "encode gif", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入 GIF 文件失败: %w", err)
	}
	return nil
}

func centis(d time.Duration) int {
	return int(d / (10 * time.Millisecond))
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
