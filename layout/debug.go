package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

type debugSlot struct {
	Slot
	Glyph   string  `json:"glyph"`
	CenterX float64 `json:"centerX"`
}

type debugResult struct {
	TotalWidth  float64     `json:"totalWidth"`
	TotalHeight float64     `json:"totalHeight"`
	Padding     float64     `json:"padding"`
	Drawable    int         `json:"drawable"`
	Slots       []debugSlot `json:"slots"`
}

// DebugJSON 将布局结果序列化为便于人工查看的 JSON（码点同时给出字符形式）。
func DebugJSON(res *Result) ([]byte, error) {
	if res == nil {
		return []byte("null"), nil
	}
	out := debugResult{
		TotalWidth:  res.TotalWidth,
		TotalHeight: res.TotalHeight,
		Padding:     res.Padding,
		Drawable:    res.DrawableCount(),
		Slots:       make([]debugSlot, 0, len(res.Slots)),
	}
	for _, s := range res.Slots {
		out.Slots = append(out.Slots, debugSlot{Slot: s, Glyph: string(s.Char), CenterX: s.CenterX()})
	}
	return json.MarshalIndent(out, "", "  ")
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := DebugJSON(res)
	if err != nil {
		return fmt.Errorf("序列化布局结果失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
