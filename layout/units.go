package layout

import (
	"strconv"
	"strings"
)

// 该文件定义配置中长度值的单位与换算，布局内部统一使用 px（96 DPI）。

// Unit 是配置中长度值书写时的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位，按 px 处理
	UnitPX
	UnitPT
	UnitMM
	UnitCM
	UnitIN
)

// 96 DPI 下的换算系数。
const (
	PxPerIn = 96.0
	PxPerPt = PxPerIn / 72.0
	PxPerMm = PxPerIn / 25.4
	PtToPx  = PxPerPt
	PxToPt  = 1.0 / PxPerPt
)

// UnitToString 返回单位的简写。
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length 保留数值及其单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX 换算为像素。
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerPt
	case UnitMM:
		return l.Value * PxPerMm
	case UnitCM:
		return l.Value * 10 * PxPerMm
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// ToPT 换算为磅。
func (l Length) ToPT() float64 { return l.ToPX() * PxToPt }

// ParseLength 解析 "150"、"150px"、"12pt"、"4mm" 之类的字符串。
// ok 为 false 表示数值部分无法解析或单位不受支持。
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
