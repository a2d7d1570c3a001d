// Package app 把布局、导出、面板与播放器串成面向用户的三个动作：
// 播放笔顺动画、下载 SVG、下载 PNG。
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/binding"
	"github.com/ByLCY/bihua/config"
	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/export"
	"github.com/ByLCY/bihua/layout"
	"github.com/ByLCY/bihua/notify"
	"github.com/ByLCY/bihua/panel"
	"github.com/ByLCY/bihua/renderer"
	canvasrenderer "github.com/ByLCY/bihua/renderer/canvas"
	svgrenderer "github.com/ByLCY/bihua/renderer/svg"
)

// 用户可见的提示文案。
const (
	MsgAnimateEmpty  = "Please enter Chinese characters first"
	MsgAnimateDone   = "Animation complete!"
	MsgAnimateFailed = "Animation error occurred"
	MsgAnimateBusy   = "Animation is already playing"
	MsgExportEmpty   = "Please enter characters first"
	MsgSVGSaved      = "SVG downloaded successfully!"
	MsgSVGFailed     = "Failed to download SVG"
	MsgPNGSaved      = "PNG downloaded successfully!"
	MsgPNGFailed     = "Failed to generate PNG"
)

// FileSink 接收导出的文件，返回写出的位置。
type FileSink interface {
	Write(name string, data []byte) (string, error)
}

// DirSink 把文件写进一个目录。
type DirSink struct {
	Dir string
}

func (s DirSink) Write(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return path, nil
}

// Options 汇总 Controller 的协作者；为空的字段使用默认实现。
type Options struct {
	Config   config.Config
	Backend  anim.Backend
	Notifier notify.Notifier
	Sink     FileSink
	Vector   renderer.Renderer
	Raster   renderer.Renderer
}

// Controller 持有当前输入与动画会话。输入变化时整体重建面板并替换会话。
type Controller struct {
	cfg      config.Config
	backend  anim.Backend
	notifier notify.Notifier
	sink     FileSink
	vector   renderer.Renderer
	raster   renderer.Renderer
	player   *anim.Player

	// 播放期间输入框不可用；OnState 在播放器锁内回调，这里不能再用 mu
	inputEnabled atomic.Bool

	mu    sync.Mutex
	text  string
	panel *panel.Panel
}

// New 创建一个输入为空的 Controller。
func New(opts Options) *Controller {
	c := &Controller{
		cfg:      opts.Config,
		backend:  opts.Backend,
		notifier: opts.Notifier,
		sink:     opts.Sink,
		vector:   opts.Vector,
		raster:   opts.Raster,
		panel:    &panel.Panel{},
	}
	if c.cfg.FilenameTemplate == "" {
		c.cfg = config.Default()
	}
	if c.notifier == nil {
		c.notifier = notify.Log{}
	}
	if c.sink == nil {
		c.sink = DirSink{Dir: "."}
	}
	if c.vector == nil {
		c.vector = svgrenderer.NewRenderer(svgrenderer.Options{Minify: c.cfg.Minify})
	}
	if c.raster == nil {
		c.raster = canvasrenderer.NewRenderer()
	}
	c.inputEnabled.Store(true)
	c.player = anim.NewPlayer(anim.PlayerOptions{
		Timeout: c.cfg.Timeout,
		OnState: func(s anim.Status) { c.inputEnabled.Store(s.State != anim.Playing) },
	})
	return c
}

// Player 返回会话所属的播放器。
func (c *Controller) Player() *anim.Player { return c.player }

// InputEnabled 报告输入框当前是否可编辑。
func (c *Controller) InputEnabled() bool { return c.inputEnabled.Load() }

// Input 返回规范化后的当前输入。
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Panel 返回当前字符面板。
func (c *Controller) Panel() *panel.Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

// SetInput 规范化输入（去掉首尾空白并做 NFC），重建字符面板，并用新句柄替换会话。
// 正在播放的旧会话被放弃。
func (c *Controller) SetInput(text string) *panel.Panel {
	text = norm.NFC.String(strings.TrimSpace(text))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	if c.backend == nil {
		c.panel = &panel.Panel{Text: text}
	} else {
		c.panel = panel.Build(c.backend, text, c.cfg.Writer)
	}
	c.player.Replace(c.panel.Handles())
	return c.panel
}

// Animate 依次播放当前面板上的所有字符，结束后发出提示。
func (c *Controller) Animate(ctx context.Context) error {
	if c.Input() == "" {
		c.notifier.Notify(MsgAnimateEmpty, core.SeverityWarning)
		return core.Errorf(core.ErrEmptyInput, "animate", nil)
	}
	err := c.player.Start(ctx)
	switch {
	case err == nil:
		core.Logger().Info("笔顺动画播放完成", "text", c.Input())
		c.notifier.Notify(MsgAnimateDone, core.SeveritySuccess)
	case errors.Is(err, core.ErrAbandoned):
		// 输入已经变化，旧会话的结果不再展示
		core.Logger().Info("动画会话被新输入放弃")
	case errors.Is(err, core.ErrEmptyInput):
		c.notifier.Notify(MsgAnimateEmpty, core.SeverityWarning)
	case errors.Is(err, core.ErrBusy):
		c.notifier.Notify(MsgAnimateBusy, core.SeverityWarning)
	default:
		core.Logger().Error("笔顺动画播放失败", "err", err)
		c.notifier.Notify(MsgAnimateFailed, core.SeverityError)
	}
	return err
}

// DownloadSVG 导出矢量文件，返回写出的位置。
func (c *Controller) DownloadSVG(ctx context.Context) (string, error) {
	return c.download(ctx, c.vector, MsgSVGSaved, MsgSVGFailed)
}

// DownloadPNG 导出位图文件，返回写出的位置。
func (c *Controller) DownloadPNG(ctx context.Context) (string, error) {
	return c.download(ctx, c.raster, MsgPNGSaved, MsgPNGFailed)
}

// Document 为当前输入生成导出文档。
func (c *Controller) Document() (*export.Document, error) {
	return buildDocument(c.Input(), c.cfg)
}

func buildDocument(text string, cfg config.Config) (*export.Document, error) {
	if text == "" {
		return nil, core.Errorf(core.ErrEmptyInput, "export", nil)
	}
	return export.Build(layout.Build(text, cfg.Layout), cfg.Style)
}

func (c *Controller) download(ctx context.Context, r renderer.Renderer, okMsg, failMsg string) (string, error) {
	text := c.Input()
	doc, err := buildDocument(text, c.cfg)
	if err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			c.notifier.Notify(MsgExportEmpty, core.SeverityWarning)
		} else {
			c.notifier.Notify(failMsg, core.SeverityError)
		}
		return "", err
	}
	data, err := r.Render(ctx, doc)
	if err != nil {
		core.Logger().Error("导出失败", "mime", r.MIME(), "err", err)
		c.notifier.Notify(failMsg, core.SeverityError)
		return "", err
	}
	name := binding.FileName(c.cfg.FilenameTemplate, binding.Vars{
		Text:    text,
		Profile: c.cfg.Profile,
		Glyphs:  len(doc.Marks),
	}, r.Ext())
	path, err := c.sink.Write(name, data)
	if err != nil {
		core.Logger().Error("写出导出文件失败", "name", name, "err", err)
		c.notifier.Notify(failMsg, core.SeverityError)
		return "", err
	}
	core.Logger().Info("导出文件已写出", "path", path, "mime", r.MIME(), "bytes", len(data))
	c.notifier.Notify(okMsg, core.SeveritySuccess)
	return path, nil
}
