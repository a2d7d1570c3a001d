package layout

// 该文件定义字形布局结果，供导出、动画面板与调试 JSON 共用。

// Kind 区分空白占位与可绘制字符。
type Kind int

const (
	Drawable Kind = iota
	Blank
)

func (k Kind) String() string {
	if k == Blank {
		return "blank"
	}
	return "drawable"
}

// Token 是输入文本中的一个码点。
type Token struct {
	Char rune `json:"char"`
	Kind Kind `json:"kind"`
}

// Slot 记录单个字形的水平位置与宽度（单位：px）。
type Slot struct {
	Index   int     `json:"index"`
	Char    rune    `json:"char"`
	XOffset float64 `json:"xOffset"`
	Width   float64 `json:"width"`
	IsBlank bool    `json:"isBlank"`
}

// CenterX 返回槽位水平中心。
func (s Slot) CenterX() float64 { return s.XOffset + s.Width/2 }

// Result 保存一次布局计算的整体尺寸与槽位序列。
type Result struct {
	TotalWidth  float64 `json:"totalWidth"`
	TotalHeight float64 `json:"totalHeight"`
	Padding     float64 `json:"padding"`
	Slots       []Slot  `json:"slots"`
}

// DrawableCount 返回非空白槽位数量。
func (r *Result) DrawableCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Slots {
		if !s.IsBlank {
			n++
		}
	}
	return n
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}
