// Package dsl 解析导出/动画参数的配置文件（profile）。
//
//	profile Classroom v1 {
//	  export {
//	    char-width: 150px
//	    font-family: "SimSun, STKaiti, KaiTi, serif"
//	  }
//	  writer {
//	    radical-color: #667eea
//	    show-outline: true
//	  }
//	}
package dsl

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in|ms|s|x|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	profileParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)

	quantityPattern = regexp.MustCompile(`^(-?(?:\d+\.\d+|\d+))(px|pt|mm|cm|in|ms|s|x|%)?$`)
)

// Document 是 profile 文件的语法树根节点。
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'profile' @Ident"`
	Version  string         `parser:"@( Ident | Number )"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section 是一个具名的键值块，例如 export / writer / animation。
type Section struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"@Ident"`
	Entries []*Assignment  `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment 使用冒号语法（key: value）。
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' @@"`
}

// Value 是一个属性值。
type Value struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue 对应 `[ ... ]` 表达式。
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Raw 返回值的源文本形式（字符串为去引号后的内容）。
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		parts := make([]string, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			parts = append(parts, item.Raw())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// Quantity 拆分数字与单位，例如 "100ms" -> (100, "ms")。
func (v *Value) Quantity() (float64, string, error) {
	if v == nil || v.Number == nil {
		return 0, "", fmt.Errorf("%s: 期望数字，得到 %q", v.position(), v.Raw())
	}
	m := quantityPattern.FindStringSubmatch(*v.Number)
	if m == nil {
		return 0, "", fmt.Errorf("%s: 数字格式错误 %q", v.position(), *v.Number)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", v.position(), err)
	}
	return f, m[2], nil
}

// Bool 接受 true/false/yes/no/on/off。
func (v *Value) Bool() (bool, error) {
	if v != nil && v.Ident != nil {
		switch strings.ToLower(*v.Ident) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("%s: 期望布尔值，得到 %q", v.position(), v.Raw())
}

// Text 返回字符串或标识符的内容。
func (v *Value) Text() (string, error) {
	switch {
	case v != nil && v.String != nil:
		return string(*v.String), nil
	case v != nil && v.Ident != nil:
		return *v.Ident, nil
	}
	return "", fmt.Errorf("%s: 期望字符串，得到 %q", v.position(), v.Raw())
}

func (v *Value) position() string {
	if v == nil {
		return "<nil>"
	}
	return v.Pos.String()
}

// StringLiteral 在捕获时去掉 Go 风格字符串的引号。
type StringLiteral string

// Capture 实现 participle.Capture。
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 从 io.Reader 解析 profile。
func Parse(r io.Reader) (*Document, error) {
	return profileParser.Parse("", r)
}

// ParseNamed 与 Parse 相同，但错误位置中带上文件名。
func ParseNamed(filename string, r io.Reader) (*Document, error) {
	return profileParser.Parse(filename, r)
}

// ParseString 从字符串解析 profile。
func ParseString(input string) (*Document, error) {
	return profileParser.ParseString("", input)
}

// Section 按名称查找第一个同名块。
func (d *Document) Section(name string) *Section {
	if d == nil {
		return nil
	}
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}
