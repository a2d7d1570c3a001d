// Package strokedata 读取 hanzi-writer-data 格式的笔画数据。
//
// 每个字符一个 JSON 文件，文件名为字符本身，例如 "永.json"：
//
//	{"strokes": ["M 440 788 Q ..."], "medians": [[[x, y], ...]], "radStrokes": [0, 1]}
//
// 坐标位于 1024x1024 的方框内，y 轴向上，取值范围约为 -124 到 900。
package strokedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/ByLCY/bihua/core"
)

// 坐标系常量。
const (
	BoxSize = 1024.0
	YOffset = 124.0 // 把 y 平移到 0..1024
)

// Character 是单个字符的笔画描述。
type Character struct {
	Char       string        `json:"-"`
	Strokes    []string      `json:"strokes"`
	Medians    [][][]float64 `json:"medians"`
	RadStrokes []int         `json:"radStrokes,omitempty"`
}

// IsRadical 判断第 i 笔是否属于部首。
func (c *Character) IsRadical(i int) bool {
	for _, r := range c.RadStrokes {
		if r == i {
			return true
		}
	}
	return false
}

// Validate 检查笔画与中线数量一致且非空。
func (c *Character) Validate() error {
	if len(c.Strokes) == 0 {
		return fmt.Errorf("字符 %s 没有笔画", c.Char)
	}
	if len(c.Medians) != 0 && len(c.Medians) != len(c.Strokes) {
		return fmt.Errorf("字符 %s 的笔画数 %d 与中线数 %d 不一致", c.Char, len(c.Strokes), len(c.Medians))
	}
	return nil
}

// Source 提供字符的笔画数据。
type Source interface {
	Character(char string) (*Character, error)
}

// Dir 从文件系统目录读取 "<char>.json"，结果缓存在内存中。
type Dir struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*Character
}

// NewDir 以磁盘目录创建数据源。
func NewDir(path string) *Dir { return NewFS(os.DirFS(path)) }

// NewFS 以任意 fs.FS 创建数据源，便于测试使用 fstest.MapFS。
func NewFS(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys, cache: map[string]*Character{}}
}

// Character 读取并解析字符数据；文件不存在或数据不完整时返回 ErrUnsupportedGlyph。
func (d *Dir) Character(char string) (*Character, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.cache[char]; ok {
		return c, nil
	}
	data, err := fs.ReadFile(d.fsys, char+".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &core.Error{Kind: core.ErrUnsupportedGlyph, Op: "load stroke data", Glyph: char}
		}
		return nil, fmt.Errorf("读取笔画数据 %s 失败: %w", char, err)
	}
	c, err := Parse(char, data)
	if err != nil {
		return nil, &core.Error{Kind: core.ErrUnsupportedGlyph, Op: "load stroke data", Glyph: char, Err: err}
	}
	d.cache[char] = c
	return c, nil
}

// Parse 解析单个字符的 JSON 数据。
func Parse(char string, data []byte) (*Character, error) {
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("解析笔画数据 %s 失败: %w", char, err)
	}
	c.Char = char
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
