package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/quick"
	"unicode"

	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/layout"
)

func buildDoc(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := Build(layout.Build(text, layout.DefaultOptions()), DefaultStyle())
	if err != nil {
		t.Fatalf("Build(%q) error: %v", text, err)
	}
	return doc
}

func TestBuildSkipsBlankSlots(t *testing.T) {
	opts := layout.DefaultOptions()
	doc := buildDoc(t, "A B")
	if len(doc.Marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(doc.Marks))
	}
	// 第二个字符位于空白槽位之后
	wantX := opts.Padding + opts.CharWidth + opts.SpaceWidth + opts.CharWidth/2
	if doc.Marks[1].CenterX != wantX {
		t.Fatalf("second mark centerX 期望 %g，实际 %g", wantX, doc.Marks[1].CenterX)
	}
	if doc.Marks[0].CenterY != doc.Height/2 {
		t.Fatalf("mark should be vertically centered, got %g of %g", doc.Marks[0].CenterY, doc.Height)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   "} {
		_, err := Build(layout.Build(text, layout.DefaultOptions()), DefaultStyle())
		if !errors.Is(err, core.ErrEmptyInput) {
			t.Fatalf("Build(%q) expected ErrEmptyInput, got %v", text, err)
		}
	}
}

func TestMarshalSVGDeterministic(t *testing.T) {
	a := buildDoc(t, "你好 世界").MarshalSVG()
	b := buildDoc(t, "你好 世界").MarshalSVG()
	if !bytes.Equal(a, b) {
		t.Fatalf("MarshalSVG output differs between runs")
	}
	if got := strings.Count(string(a), "<text "); got != 4 {
		t.Fatalf("expected 4 text nodes, got %d", got)
	}
	if !strings.Contains(string(a), `font-family="SimSun, STKaiti, KaiTi, serif"`) {
		t.Fatalf("font chain missing from output:\n%s", a)
	}
}

func TestMarshalSVGEscapesGlyphs(t *testing.T) {
	svg := string(buildDoc(t, "<&>").MarshalSVG())
	for _, want := range []string{">&lt;</text>", ">&amp;</text>", ">&gt;</text>"} {
		if !strings.Contains(svg, want) {
			t.Fatalf("expected %s in output:\n%s", want, svg)
		}
	}
}

func TestParseSVGRoundTrip(t *testing.T) {
	doc := buildDoc(t, "永 A")
	back, err := ParseSVG(doc.MarshalSVG())
	if err != nil {
		t.Fatalf("ParseSVG error: %v", err)
	}
	if back.Width != doc.Width || back.Height != doc.Height {
		t.Fatalf("size mismatch: got %gx%g want %gx%g", back.Width, back.Height, doc.Width, doc.Height)
	}
	if back.Background != doc.Background {
		t.Fatalf("background mismatch: %+v vs %+v", back.Background, doc.Background)
	}
	if back.TextColor != doc.TextColor || back.FontFamily != doc.FontFamily {
		t.Fatalf("text style mismatch: %+v", back)
	}
	if len(back.Marks) != len(doc.Marks) {
		t.Fatalf("marks mismatch: %d vs %d", len(back.Marks), len(doc.Marks))
	}
	for i := range doc.Marks {
		if back.Marks[i] != doc.Marks[i] {
			t.Fatalf("mark %d mismatch: %+v vs %+v", i, back.Marks[i], doc.Marks[i])
		}
	}
}

// TestParseSVGLoadsPrintableInput 任意可打印输入生成的 SVG 都能重新加载。
func TestParseSVGLoadsPrintableInput(t *testing.T) {
	f := func(text string) bool {
		text = strings.Map(func(r rune) rune {
			if unicode.IsPrint(r) {
				return r
			}
			return -1
		}, text)
		doc, err := Build(layout.Build(text, layout.DefaultOptions()), DefaultStyle())
		if errors.Is(err, core.ErrEmptyInput) {
			return true
		}
		if err != nil {
			return false
		}
		_, err = ParseSVG(doc.MarshalSVG())
		return err == nil
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatalf("load property failed: %v", err)
	}
}

func TestParseSVGMalformed(t *testing.T) {
	cases := []string{
		`<svg width="10" height="10"><rect`,
		`<svg width="abc" height="10"></svg>`,
		`<svg width="10" height="10"><text x="1" y="2" font-size="big" fill="#000">a</text></svg>`,
		`<svg width="10" height="10"><rect fill="url(#missing)"/></svg>`,
	}
	for _, c := range cases {
		if _, err := ParseSVG([]byte(c)); !errors.Is(err, core.ErrRender) {
			t.Fatalf("ParseSVG(%q) expected ErrRender, got %v", c, err)
		}
	}
}

func TestControlCharactersReplaced(t *testing.T) {
	doc := buildDoc(t, "a\x01")
	if doc.Marks[1].Text != "�" {
		t.Fatalf("control char should be replaced, got %q", doc.Marks[1].Text)
	}
	if _, err := ParseSVG(doc.MarshalSVG()); err != nil {
		t.Fatalf("ParseSVG error: %v", err)
	}
}
