package renderer

import (
	"context"

	"github.com/ByLCY/bihua/export"
)

// Renderer 将导出文档输出为最终文件，例如 SVG 文本或 PNG 位图。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(ctx context.Context, doc *export.Document) ([]byte, error)
	// MIME 返回产物的媒体类型，例如 "image/png"。
	MIME() string
	// Ext 返回带点的文件扩展名，例如 ".png"。
	Ext() string
}
