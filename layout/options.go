package layout

// Options 配置布局阶段的尺寸参数，单位均为 px。
type Options struct {
	CharWidth  float64 // 每个可绘制字符占用的宽度
	SpaceWidth float64 // 每个空白字符占用的宽度
	CharHeight float64 // 固定的字符行高度（不含内边距）
	Padding    float64 // 四周内边距
}

// DefaultOptions 与下载图片时使用的尺寸一致。
func DefaultOptions() Options {
	return Options{
		CharWidth:  150,
		SpaceWidth: 40,
		CharHeight: 180,
		Padding:    20,
	}
}
