// Package fonts 按回退链解析导出与动画使用的字体。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/bihua/core"
)

// BuiltinName 是内置兜底字体的名称。
const BuiltinName = "Go Regular"

// Font 是一份可交给渲染器加载的字体数据。
type Font struct {
	Name   string
	Path   string // 系统字体的文件路径，内置字体为空
	Data   []byte
	System bool
}

var genericFamilies = map[string]bool{
	"serif":      true,
	"sans-serif": true,
	"monospace":  true,
	"cursive":    true,
	"fantasy":    true,
	"system-ui":  true,
}

// 常见中文字体名到文件名的映射，findfont 按文件名查找。
var knownFiles = map[string][]string{
	"simsun":  {"simsun.ttc", "simsun.ttf"},
	"stkaiti": {"STKaiti.ttf", "Kaiti.ttc"},
	"kaiti":   {"simkai.ttf", "Kaiti.ttc"},
	"simhei":  {"simhei.ttf"},
}

// 通用字体族只映射到带中文字形的系统字体，避免落到纯西文字体上。
var genericFiles = map[string][]string{
	"serif": {
		"NotoSerifCJK-Regular.ttc", "NotoSerifCJKsc-Regular.otf", "SourceHanSerifSC-Regular.otf",
		"simsun.ttc", "Songti.ttc", "wqy-zenhei.ttc",
	},
	"sans-serif": {
		"NotoSansCJK-Regular.ttc", "NotoSansCJKsc-Regular.otf", "SourceHanSansSC-Regular.otf",
		"msyh.ttc", "PingFang.ttc", "wqy-microhei.ttc", "wqy-zenhei.ttc",
	},
}

// ParseChain 拆分 CSS 风格的字体回退链，去掉引号与空项。
func ParseChain(chain string) []string {
	var names []string
	for _, part := range strings.Split(chain, ",") {
		name := strings.Trim(strings.TrimSpace(part), `"'`)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IsGeneric 判断名称是否为 CSS 通用字体族。
func IsGeneric(name string) bool {
	return genericFamilies[strings.ToLower(name)]
}

// Builtin 返回内置的 Go Regular 字体。
func Builtin() Font {
	return Font{Name: BuiltinName, Data: goregular.TTF}
}

// Resolver 依次尝试回退链上的系统字体，全部失败时使用内置字体。
type Resolver struct {
	// Find 用于查找系统字体文件，默认为 findfont.Find。
	Find func(name string) (string, error)

	pinned *Font

	mu    sync.Mutex
	cache map[string]Font
}

// Pinned 创建总是返回 f 的解析器，忽略文档中的回退链。
func Pinned(f Font) *Resolver { return &Resolver{pinned: &f} }

// NewResolver 创建使用系统字体目录的解析器。
func NewResolver() *Resolver {
	return &Resolver{Find: findfont.Find, cache: map[string]Font{}}
}

// Resolve 返回回退链上第一个能找到的字体；结果按链缓存。
func (r *Resolver) Resolve(chain string) Font {
	if r.pinned != nil {
		return *r.pinned
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = map[string]Font{}
	}
	if f, ok := r.cache[chain]; ok {
		return f
	}
	f := r.lookup(chain)
	r.cache[chain] = f
	return f
}

func (r *Resolver) lookup(chain string) Font {
	find := r.Find
	if find == nil {
		find = findfont.Find
	}
	for _, name := range ParseChain(chain) {
		for _, candidate := range candidates(name) {
			path, err := find(candidate)
			if err != nil || path == "" {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				core.Logger().Warn("读取系统字体失败", "font", name, "path", path, "err", err)
				continue
			}
			core.Logger().Debug("使用系统字体", "font", name, "path", path)
			return Font{Name: name, Path: path, Data: data, System: true}
		}
	}
	core.Logger().Warn("回退链中没有可用的系统字体，使用内置字体", "chain", chain, "font", BuiltinName)
	return Builtin()
}

func candidates(name string) []string {
	if IsGeneric(name) {
		return genericFiles[strings.ToLower(name)]
	}
	out := []string{name}
	if files, ok := knownFiles[strings.ToLower(name)]; ok {
		out = append(out, files...)
	}
	if filepath.Ext(name) == "" {
		out = append(out, name+".ttf", name+".otf", name+".ttc")
	}
	return out
}

// Load 读取字体文件；path 为空时返回内置字体。
func Load(path string) (Font, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Font{}, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return Font{Name: filepath.Base(path), Path: path, Data: data, System: true}, nil
}
