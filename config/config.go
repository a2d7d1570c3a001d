// Package config 汇总导出、动画面板与播放器的运行参数，并从 profile 文件加载覆盖值。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/dsl"
	"github.com/ByLCY/bihua/export"
	"github.com/ByLCY/bihua/layout"
)

// DefaultFilenameTemplate 生成 "<文本>_characters.svg" 这样的文件名。
const DefaultFilenameTemplate = "${text}_characters"

// Config 是一次运行的完整参数。
type Config struct {
	Profile          string
	Layout           layout.Options
	Style            export.Style
	Writer           anim.Options
	Timeout          time.Duration // 单个句柄的播放上限，0 表示不限
	FilenameTemplate string
	Minify           bool
}

// Default 返回内置默认值。
func Default() Config {
	return Config{
		Profile:          "default",
		Layout:           layout.DefaultOptions(),
		Style:            export.DefaultStyle(),
		Writer:           anim.DefaultOptions(),
		Timeout:          anim.DefaultTimeout,
		FilenameTemplate: DefaultFilenameTemplate,
	}
}

// Load 读取 profile 文件并叠加到默认值上。
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("无法打开配置文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.ParseNamed(path, file)
	if err != nil {
		return Config{}, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument 将已解析的 profile 叠加到默认值上。未知的块或键视为错误。
func FromDocument(doc *dsl.Document) (Config, error) {
	cfg := Default()
	if doc == nil {
		return cfg, nil
	}
	cfg.Profile = doc.Name
	for _, sec := range doc.Sections {
		setters, ok := sections[sec.Name]
		if !ok {
			return Config{}, fmt.Errorf("%s: 未知的配置块 %q", sec.Pos, sec.Name)
		}
		for _, entry := range sec.Entries {
			set, ok := setters[entry.Key]
			if !ok {
				return Config{}, fmt.Errorf("%s: 配置块 %s 中未知的键 %q", entry.Pos, sec.Name, entry.Key)
			}
			if err := set(&cfg, entry.Value); err != nil {
				return Config{}, fmt.Errorf("%s.%s: %w", sec.Name, entry.Key, err)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查尺寸与速度等数值是否合理。
func (c Config) Validate() error {
	switch {
	case c.Layout.CharWidth <= 0 || c.Layout.CharHeight <= 0:
		return fmt.Errorf("字符宽高必须为正数")
	case c.Layout.SpaceWidth < 0 || c.Layout.Padding < 0:
		return fmt.Errorf("空白宽度与内边距不能为负数")
	case c.Style.FontSize <= 0:
		return fmt.Errorf("字号必须为正数")
	case c.Writer.Width <= 0 || c.Writer.Height <= 0:
		return fmt.Errorf("动画面板宽高必须为正数")
	case c.Writer.Padding < 0 || 2*c.Writer.Padding >= c.Writer.Width || 2*c.Writer.Padding >= c.Writer.Height:
		return fmt.Errorf("动画面板内边距 %.0f 超出面板尺寸", c.Writer.Padding)
	case c.Writer.StrokeAnimationSpeed <= 0:
		return fmt.Errorf("笔画速度必须为正数")
	case c.Writer.DelayBetweenStrokes < 0 || c.Timeout < 0:
		return fmt.Errorf("时长不能为负数")
	case c.FilenameTemplate == "":
		return fmt.Errorf("文件名模板不能为空")
	}
	return nil
}

type setter func(*Config, *dsl.Value) error

var sections = map[string]map[string]setter{
	"export": {
		"char-width":  length(func(c *Config) *float64 { return &c.Layout.CharWidth }),
		"space-width": length(func(c *Config) *float64 { return &c.Layout.SpaceWidth }),
		"char-height": length(func(c *Config) *float64 { return &c.Layout.CharHeight }),
		"padding":     length(func(c *Config) *float64 { return &c.Layout.Padding }),
		"font-size":   length(func(c *Config) *float64 { return &c.Style.FontSize }),
		"font-family": text(func(c *Config) *string { return &c.Style.FontFamily }),
		"text-color":  colour(func(c *Config) *layout.Color { return &c.Style.TextColor }),
		"background":  background,
		"filename":    text(func(c *Config) *string { return &c.FilenameTemplate }),
		"minify":      boolean(func(c *Config) *bool { return &c.Minify }),
	},
	"writer": {
		"width":          length(func(c *Config) *float64 { return &c.Writer.Width }),
		"height":         length(func(c *Config) *float64 { return &c.Writer.Height }),
		"padding":        length(func(c *Config) *float64 { return &c.Writer.Padding }),
		"stroke-color":   colour(func(c *Config) *layout.Color { return &c.Writer.StrokeColor }),
		"radical-color":  colour(func(c *Config) *layout.Color { return &c.Writer.RadicalColor }),
		"outline-color":  colour(func(c *Config) *layout.Color { return &c.Writer.OutlineColor }),
		"show-outline":   boolean(func(c *Config) *bool { return &c.Writer.ShowOutline }),
		"show-character": boolean(func(c *Config) *bool { return &c.Writer.ShowCharacter }),
		"speed":          speed,
		"delay":          duration(func(c *Config) *time.Duration { return &c.Writer.DelayBetweenStrokes }),
	},
	"animation": {
		"timeout": duration(func(c *Config) *time.Duration { return &c.Timeout }),
	},
}

func length(field func(*Config) *float64) setter {
	return func(c *Config, v *dsl.Value) error {
		if v == nil || v.Number == nil {
			return fmt.Errorf("期望长度，得到 %q", v.Raw())
		}
		l, ok := layout.ParseLength(*v.Number)
		if !ok {
			return fmt.Errorf("%s: 无法解析长度 %q", v.Pos, *v.Number)
		}
		*field(c) = l.ToPX()
		return nil
	}
}

func text(field func(*Config) *string) setter {
	return func(c *Config, v *dsl.Value) error {
		s, err := v.Text()
		if err != nil {
			return err
		}
		*field(c) = s
		return nil
	}
}

func boolean(field func(*Config) *bool) setter {
	return func(c *Config, v *dsl.Value) error {
		b, err := v.Bool()
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func colour(field func(*Config) *layout.Color) setter {
	return func(c *Config, v *dsl.Value) error {
		col, err := parseColor(v)
		if err != nil {
			return err
		}
		*field(c) = col
		return nil
	}
}

func parseColor(v *dsl.Value) (layout.Color, error) {
	if v == nil || (v.Color == nil && v.String == nil) {
		return layout.Color{}, fmt.Errorf("期望颜色，得到 %q", v.Raw())
	}
	col, err := layout.ParseColor(v.Raw())
	if err != nil {
		return layout.Color{}, fmt.Errorf("%s: %w", v.Pos, err)
	}
	return col, nil
}

// background 接受单个颜色（纯色）或 [起始色, 结束色]。
func background(c *Config, v *dsl.Value) error {
	if v != nil && v.Array != nil {
		if n := len(v.Array.Values); n < 1 || n > 2 {
			return fmt.Errorf("%s: 背景渐变需要 1 到 2 个颜色，得到 %d 个", v.Pos, n)
		}
		from, err := parseColor(v.Array.Values[0])
		if err != nil {
			return err
		}
		to := from
		if len(v.Array.Values) == 2 {
			if to, err = parseColor(v.Array.Values[1]); err != nil {
				return err
			}
		}
		c.Style.Background = export.Background{From: from, To: to}
		return nil
	}
	col, err := parseColor(v)
	if err != nil {
		return err
	}
	c.Style.Background = export.Background{From: col, To: col}
	return nil
}

// speed 是倍速，可写作 2 或 2x。
func speed(c *Config, v *dsl.Value) error {
	n, unit, err := v.Quantity()
	if err != nil {
		return err
	}
	if unit != "" && unit != "x" {
		return fmt.Errorf("%s: 速度不支持单位 %q", v.Pos, unit)
	}
	c.Writer.StrokeAnimationSpeed = n
	return nil
}

// duration 无单位时按毫秒处理。
func duration(field func(*Config) *time.Duration) setter {
	return func(c *Config, v *dsl.Value) error {
		n, unit, err := v.Quantity()
		if err != nil {
			return err
		}
		switch unit {
		case "", "ms":
			*field(c) = time.Duration(n * float64(time.Millisecond))
		case "s":
			*field(c) = time.Duration(n * float64(time.Second))
		default:
			return fmt.Errorf("%s: 时长不支持单位 %q", v.Pos, unit)
		}
		return nil
	}
}
