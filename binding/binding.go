// Package binding 展开文件名模板中的 ${...} 占位符。
package binding

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// 变量名后可跟一个下标，例如 ${chars[0]}
	exprPattern  = regexp.MustCompile(`\$\{\s*([a-z]+)(?:\[(\d+)\])?\s*\}`)
	spacePattern = regexp.MustCompile(`\s+`)

	// 路径分隔符与 Windows 保留字符
	unsafePattern = regexp.MustCompile(`[/\\:*?"<>|]`)
)

// Vars 是展开文件名模板时可用的变量：
//
//	${text}      规范化后的输入
//	${text[i]}   输入的第 i 个码点（含空白）
//	${chars}     去掉空白后的可绘制字符
//	${chars[i]}  第 i 个可绘制字符
//	${profile}   profile 名称
//	${glyphs}    可绘制字符数
type Vars struct {
	Text    string
	Profile string
	Glyphs  int
}

// Expand 替换模板中能识别的占位符，其余原样保留。
func (v Vars) Expand(template string) string {
	return exprPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if val, ok := v.lookup(groups[1], groups[2]); ok {
			return val
		}
		return match
	})
}

func (v Vars) lookup(name, index string) (string, bool) {
	var items []string
	switch name {
	case "text":
		if index == "" {
			return v.Text, true
		}
		items = strings.Split(v.Text, "")
	case "chars":
		items = v.chars()
		if index == "" {
			return strings.Join(items, ""), true
		}
	case "profile":
		return v.Profile, index == ""
	case "glyphs":
		return strconv.Itoa(v.Glyphs), index == ""
	default:
		return "", false
	}
	i, err := strconv.Atoi(index)
	if err != nil || i >= len(items) {
		return "", false
	}
	return items[i], true
}

func (v Vars) chars() []string {
	var out []string
	for _, r := range v.Text {
		if !unicode.IsSpace(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// FileName 展开模板并附加扩展名。空白串统一替换为下划线，
// 矢量与位图导出因此得到同样的主文件名。
func FileName(template string, vars Vars, ext string) string {
	name := vars.Expand(template)
	name = spacePattern.ReplaceAllString(strings.TrimSpace(name), "_")
	name = unsafePattern.ReplaceAllString(name, "_")
	if name == "" {
		name = "characters"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}
