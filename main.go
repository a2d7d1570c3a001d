package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/app"
	gifbackend "github.com/ByLCY/bihua/backend/gif"
	"github.com/ByLCY/bihua/config"
	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/fonts"
	"github.com/ByLCY/bihua/layout"
	"github.com/ByLCY/bihua/notify"
	"github.com/ByLCY/bihua/renderer"
	canvasrenderer "github.com/ByLCY/bihua/renderer/canvas"
	"github.com/ByLCY/bihua/strokedata"
)

type options struct {
	text     string
	profile  string
	outDir   string
	svg      bool
	png      bool
	animate  bool
	dataDir  string
	realtime bool
	debug    string
	minify   bool
	font     string
}

func main() {
	var opts options
	flag.StringVar(&opts.text, "text", "", "要处理的汉字文本")
	flag.StringVar(&opts.profile, "profile", "", "profile 配置文件路径")
	flag.StringVar(&opts.outDir, "out", "output", "输出目录")
	flag.BoolVar(&opts.svg, "svg", true, "导出 SVG")
	flag.BoolVar(&opts.png, "png", false, "导出 PNG")
	flag.BoolVar(&opts.animate, "animate", false, "按笔顺生成每个字符的 GIF 动画")
	flag.StringVar(&opts.dataDir, "data", "", "hanzi-writer-data 笔画数据目录（-animate 时必填）")
	flag.BoolVar(&opts.realtime, "realtime", false, "按动画实际时长逐个播放")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&opts.minify, "minify", false, "压缩 SVG 输出")
	flag.StringVar(&opts.font, "font", "", "PNG 导出使用的字体文件，覆盖回退链")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("处理失败: %v", err)
	}
}

// run 依次执行导出与动画。任一步骤失败即返回。
func run(ctx context.Context, opts options) error {
	cfg := config.Default()
	if opts.profile != "" {
		loaded, err := config.Load(opts.profile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.minify {
		cfg.Minify = true
	}

	var backend anim.Backend
	if opts.animate {
		if opts.dataDir == "" {
			return fmt.Errorf("-animate 需要通过 -data 指定笔画数据目录")
		}
		backend = gifbackend.New(gifbackend.Options{
			Source:   strokedata.NewDir(opts.dataDir),
			OutDir:   filepath.Join(opts.outDir, "animation"),
			Realtime: opts.realtime,
		})
	}

	var raster renderer.Renderer
	if opts.font != "" {
		font, err := fonts.Load(opts.font)
		if err != nil {
			return err
		}
		raster = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: fonts.Pinned(font)})
	}

	ctrl := app.New(app.Options{
		Config:   cfg,
		Backend:  backend,
		Notifier: notify.Multi{notify.Log{}, notify.Func(printNotice)},
		Sink:     app.DirSink{Dir: opts.outDir},
		Raster:   raster,
	})
	ctrl.SetInput(opts.text)

	if opts.debug != "" {
		if err := writeDebug(layout.Build(ctrl.Input(), cfg.Layout), opts.debug); err != nil {
			return err
		}
	}
	if opts.svg {
		if _, err := ctrl.DownloadSVG(ctx); err != nil {
			return err
		}
	}
	if opts.png {
		if _, err := ctrl.DownloadPNG(ctx); err != nil {
			return err
		}
	}
	if opts.animate {
		for _, it := range ctrl.Panel().Placeholders() {
			fmt.Printf("字符 %s 无法加载笔画数据，已写出占位图 %s\n", it.Char, it.Placeholder)
		}
		if err := ctrl.Animate(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printNotice(message string, severity core.Severity) {
	fmt.Printf("[%s] %s\n", severity, message)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
