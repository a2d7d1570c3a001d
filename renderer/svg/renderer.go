// Package svgrenderer 输出矢量导出文档的 SVG 文本。
package svgrenderer

import (
	"context"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/ByLCY/bihua/export"
	"github.com/ByLCY/bihua/renderer"
)

// MIME 是 SVG 产物的媒体类型。
const MIME = "image/svg+xml"

// Renderer 把导出文档序列化为 UTF-8 SVG。
type Renderer struct {
	minifier *minify.M
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options 是 SVG 渲染器的配置。
type Options struct {
	// Minify 压缩输出；压缩结果同样是输入的纯函数。
	Minify bool
}

// NewRenderer 创建 SVG 渲染器。
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{}
	if opts.Minify {
		r.minifier = minify.New()
		r.minifier.AddFunc(MIME, svg.Minify)
	}
	return r
}

// Render 输出文档的 SVG 文本，失败时返回 ErrRender。
func (r *Renderer) Render(_ context.Context, doc *export.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("导出文档为空")
	}
	out := doc.MarshalSVG()
	if r.minifier == nil {
		return out, nil
	}
	small, err := r.minifier.Bytes(MIME, out)
	if err != nil {
		return nil, fmt.Errorf("压缩 SVG 失败: %w", err)
	}
	return small, nil
}

func (r *Renderer) MIME() string { return MIME }

func (r *Renderer) Ext() string { return ".svg" }
