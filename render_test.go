package qline

import (
	"bytes"
	"strings"
	"testing"
)

// render performs one redraw into a fresh capture buffer.
func render(t *testing.T, e *Editor) string {
	t.Helper()
	out := &bytes.Buffer{}
	e.out = out
	if err := e.redraw(); err != nil {
		t.Fatalf("redraw: %v", err)
	}
	return out.String()
}

func newRenderEditor(t *testing.T, text string, width int) *Editor {
	t.Helper()
	e := New("> ")
	e.out = &bytes.Buffer{}
	e.reset()
	e.termWidth = width
	if text != "" {
		mustInsert(t, e, text)
	}
	return e
}

func TestRenderBasicLine(t *testing.T) {
	e := newRenderEditor(t, "abc", 80)
	out := render(t, e)
	for _, want := range []string{escHideCursor, escShowCursor, "> ", "abc", escClearEOL} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	if e.termRow != 0 || e.linesDrawn != 1 {
		t.Fatalf("termRow=%d linesDrawn=%d, want 0 1", e.termRow, e.linesDrawn)
	}
}

func TestRenderTabAsSpaces(t *testing.T) {
	e := newRenderEditor(t, "a\tb", 80)
	out := render(t, e)
	if !strings.Contains(out, "a  b") {
		t.Fatalf("output %q missing expanded tab", out)
	}
	if strings.Contains(out, "\t") {
		t.Fatalf("output contains a literal tab")
	}
}

func TestRenderMultilineUsesContinuationPrompt(t *testing.T) {
	e := newRenderEditor(t, "", 80)
	e.SetMultiline(func(string, any) bool { return false }, nil, "...> ")
	mustInsert(t, e, "a\nb")
	out := render(t, e)
	if !strings.Contains(out, "...> ") {
		t.Fatalf("output %q missing continuation prompt", out)
	}
	if e.linesDrawn != 2 {
		t.Fatalf("linesDrawn = %d, want 2", e.linesDrawn)
	}
}

func TestRenderShrinkClearsStaleLines(t *testing.T) {
	e := newRenderEditor(t, "a\nb\nc", 80)
	_ = render(t, e)
	if e.linesDrawn != 3 {
		t.Fatalf("linesDrawn = %d, want 3", e.linesDrawn)
	}
	e.clearBuffer()
	out := render(t, e)
	if e.linesDrawn != 1 {
		t.Fatalf("linesDrawn = %d, want 1", e.linesDrawn)
	}
	// Two stale rows must be blanked.
	if got := strings.Count(out, "\n\r"+escClearEOL); got != 2 {
		t.Fatalf("stale clears = %d, want 2", got)
	}
}

func TestRenderGhostSuggestion(t *testing.T) {
	e := newRenderEditor(t, "ty", 80)
	e.SetAutocomplete(wordCompleter("typedef"), nil)
	e.generateSuggestions()
	out := render(t, e)
	if !strings.Contains(out, escFaint+"pedef") {
		t.Fatalf("output %q missing faint ghost", out)
	}
	if !e.suggestionShown {
		t.Fatalf("suggestionShown = false, want true")
	}
}

func TestRenderGhostTooWideHidden(t *testing.T) {
	// Viewport of 5 columns: "ty" leaves 3, "pedef" needs 5.
	e := newRenderEditor(t, "ty", 8)
	e.SetAutocomplete(wordCompleter("typedef"), nil)
	e.generateSuggestions()
	out := render(t, e)
	if strings.Contains(out, escFaint) {
		t.Fatalf("output %q shows ghost in narrow viewport", out)
	}
	if e.suggestionShown {
		t.Fatalf("suggestionShown = true, want false")
	}
}

func TestRenderSelectionInverse(t *testing.T) {
	e := newRenderEditor(t, "hello", 80)
	e.selection = 2 // anchor; cursor sits at 5
	out := render(t, e)
	if !strings.Contains(out, escInverse+"llo") {
		t.Fatalf("output %q missing inverse selection", out)
	}
	if !strings.Contains(out, escInverse+"llo"+escReset) {
		t.Fatalf("output %q missing reset after selection", out)
	}
}

func TestRenderSyntaxColor(t *testing.T) {
	e := newRenderEditor(t, "ab12", 80)
	if err := e.SetPalette([]int{Green, Ansi216(5, 0, 0)}); err != nil {
		t.Fatalf("palette: %v", err)
	}
	e.SetSyntaxColor(func(buf string, _ any, offset int) (ColorSpan, bool) {
		if offset >= len(buf) {
			return ColorSpan{}, false
		}
		if buf[offset] >= '0' && buf[offset] <= '9' {
			return ColorSpan{ByteEnd: len(buf), Color: 1}, true
		}
		return ColorSpan{ByteEnd: 2, Color: 0}, true
	}, nil)
	out := render(t, e)
	if !strings.Contains(out, "\x1b[32mab") {
		t.Fatalf("output %q missing green span", out)
	}
	if !strings.Contains(out, "\x1b[38;5;196m12") {
		t.Fatalf("output %q missing 256-colour span", out)
	}
}

func TestRenderPaletteOutOfRange(t *testing.T) {
	e := newRenderEditor(t, "ab", 80)
	if err := e.SetPalette([]int{Green}); err != nil {
		t.Fatalf("palette: %v", err)
	}
	e.SetSyntaxColor(func(buf string, _ any, offset int) (ColorSpan, bool) {
		return ColorSpan{ByteEnd: len(buf), Color: 99}, offset < len(buf)
	}, nil)
	out := render(t, e)
	if strings.Contains(out, "\x1b[32m") {
		t.Fatalf("output %q coloured despite out-of-range index", out)
	}
}

func TestRenderViewportScroll(t *testing.T) {
	e := newRenderEditor(t, "abcdefghijklmnopqrstuvwxyz", 12)
	e.cursor = e.buf.GraphemeCount()
	out := render(t, e)
	// Width 12, prompt 2, safety 1: nine columns; cursor at column 26
	// pins the viewport to the tail of the line.
	if strings.Contains(out, "abc") {
		t.Fatalf("output %q shows scrolled-out prefix", out)
	}
	if !strings.Contains(out, "stuvwxyz") {
		t.Fatalf("output %q missing visible tail", out)
	}
	if e.firstVisibleCol != 18 {
		t.Fatalf("firstVisibleCol = %d, want 18", e.firstVisibleCol)
	}
}

func TestRenderViewportScrollBack(t *testing.T) {
	e := newRenderEditor(t, "abcdefghijklmnopqrstuvwxyz", 12)
	e.cursor = e.buf.GraphemeCount()
	_ = render(t, e)
	e.cursor = 0
	out := render(t, e)
	if e.firstVisibleCol != 0 {
		t.Fatalf("firstVisibleCol = %d, want 0", e.firstVisibleCol)
	}
	if !strings.Contains(out, "abc") {
		t.Fatalf("output %q missing start of line", out)
	}
}

func TestEmitColorEncodings(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{-1, ""},
		{2, "\x1b[32m"},
		{9, "\x1b[91m"},
		{200, "\x1b[38;5;200m"},
		{RGB(0x10, 0x20, 0x30), "\x1b[38;2;16;32;48m"},
	}
	for _, c := range cases {
		var out bytes.Buffer
		emitColor(&out, c.code)
		if out.String() != c.want {
			t.Fatalf("emitColor(%#x) = %q, want %q", c.code, out.String(), c.want)
		}
	}
}

func TestAnsi216(t *testing.T) {
	if got := Ansi216(0, 0, 0); got != 16 {
		t.Fatalf("Ansi216(0,0,0) = %d, want 16", got)
	}
	if got := Ansi216(5, 5, 5); got != 231 {
		t.Fatalf("Ansi216(5,5,5) = %d, want 231", got)
	}
}

func TestDisplayWithSyntaxColoring(t *testing.T) {
	e := New("> ")
	out := &bytes.Buffer{}
	e.out = out
	if err := e.SetPalette([]int{Red}); err != nil {
		t.Fatalf("palette: %v", err)
	}
	e.SetSyntaxColor(func(buf string, _ any, offset int) (ColorSpan, bool) {
		if offset >= 2 {
			return ColorSpan{}, false
		}
		return ColorSpan{ByteEnd: 2, Color: 0}, true
	}, nil)

	e.DisplayWithSyntaxColoring("ab\tcd")
	got := out.String()
	want := "\x1b[31mab" + escResetFg + "  cd"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestDisplayWithoutCallbackPlain(t *testing.T) {
	e := New("> ")
	out := &bytes.Buffer{}
	e.out = out
	e.DisplayWithSyntaxColoring("plain")
	if out.String() != "plain" {
		t.Fatalf("output = %q, want %q", out.String(), "plain")
	}
}
