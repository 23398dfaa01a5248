package qline

import (
	"bytes"
	"io"
	"testing"
)

// feed runs the interactive loop against scripted keystroke bytes,
// capturing the rendered escape output.
func feed(t *testing.T, e *Editor, input string) (string, error, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	e.out = out
	e.in = bytes.NewReader([]byte(input))
	e.reset()
	e.termWidth = 80
	line, err := e.interact()
	return line, err, out
}

// typeKeys is feed for cases where the read must succeed.
func typeKeys(t *testing.T, e *Editor, input string) string {
	t.Helper()
	line, err, _ := feed(t, e, input)
	if err != nil {
		t.Fatalf("interact: %v", err)
	}
	return line
}

func checkEditorInvariants(t *testing.T, e *Editor) {
	t.Helper()
	if e.cursor < 0 || e.cursor > e.buf.GraphemeCount() {
		t.Fatalf("cursor %d out of range [0,%d]", e.cursor, e.buf.GraphemeCount())
	}
	if e.selection != selInvalid && (e.selection < 0 || e.selection > e.buf.GraphemeCount()) {
		t.Fatalf("selection %d out of range", e.selection)
	}
}

func TestNewDefaults(t *testing.T) {
	e := New("")
	if e.prompt != "> " {
		t.Fatalf("prompt = %q, want %q", e.prompt, "> ")
	}
	e = New("calc> ")
	if e.prompt != "calc> " {
		t.Fatalf("prompt = %q", e.prompt)
	}
	if e.tabWidth != 2 {
		t.Fatalf("tab width = %d, want 2", e.tabWidth)
	}
	if e.historyMax != -1 {
		t.Fatalf("history max = %d, want -1", e.historyMax)
	}
}

func TestMinimalLine(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "hi\r")
	if line != "hi" {
		t.Fatalf("line = %q, want %q", line, "hi")
	}
	if !e.AddHistory(line) {
		t.Fatalf("AddHistory rejected %q", line)
	}
	if e.HistoryCount() != 1 {
		t.Fatalf("history count = %d, want 1", e.HistoryCount())
	}
}

func TestEmptyLineVsEOF(t *testing.T) {
	e := New("> ")
	line, err, _ := feed(t, e, "\r")
	if err != nil || line != "" {
		t.Fatalf("empty line = %q err %v, want \"\" nil", line, err)
	}

	line, err, _ = feed(t, e, "")
	if err != io.EOF || line != "" {
		t.Fatalf("eof = %q err %v, want \"\" io.EOF", line, err)
	}

	// EOF after typed input hands back the buffer.
	line, err, _ = feed(t, e, "abc")
	if err != nil || line != "abc" {
		t.Fatalf("eof with input = %q err %v, want \"abc\" nil", line, err)
	}
}

func TestGraphemeNavigation(t *testing.T) {
	e := New("> ")
	// Type a thumbs-up, step over it, delete it.
	line := typeKeys(t, e, "\U0001F44D\x1b[D\x7f\r")
	if line != "" {
		t.Fatalf("line = %q, want empty", line)
	}
	checkEditorInvariants(t, e)
}

func TestBackspaceAtZeroDeletesUnderCursor(t *testing.T) {
	e := New("> ")
	// ab, Home, backspace removes 'a'.
	line := typeKeys(t, e, "ab\x1b[H\x7f\r")
	if line != "b" {
		t.Fatalf("line = %q, want %q", line, "b")
	}
}

func TestDeleteEmptyBufferNoop(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "\x7f\x7f\r")
	if line != "" {
		t.Fatalf("line = %q, want empty", line)
	}
	checkEditorInvariants(t, e)
}

func TestHomeEndLineZero(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "abc\x1b[Hx\r")
	if line != "xabc" {
		t.Fatalf("home insert = %q, want %q", line, "xabc")
	}
	line = typeKeys(t, e, "abc\x1b[H\x1b[Fy\r")
	if line != "abcy" {
		t.Fatalf("end insert = %q, want %q", line, "abcy")
	}
}

func TestPageUpDownMoveToBufferEnds(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "abc\x1b[5~x\r")
	if line != "xabc" {
		t.Fatalf("pageup = %q, want %q", line, "xabc")
	}
	line = typeKeys(t, e, "abc\x1b[5~\x1b[6~y\r")
	if line != "abcy" {
		t.Fatalf("pagedown = %q, want %q", line, "abcy")
	}
}

func TestCtrlShortcutsMoveCursor(t *testing.T) {
	e := New("> ")
	// Ctrl-A home, type x; Ctrl-E end, type y; then Ctrl-B left, type z.
	line := typeKeys(t, e, "abc\x01x\x05y\r")
	if line != "xabcy" {
		t.Fatalf("line = %q, want %q", line, "xabcy")
	}
	line = typeKeys(t, e, "ab\x02z\r")
	if line != "azb" {
		t.Fatalf("ctrl-b = %q, want %q", line, "azb")
	}
}

func TestCtrlCCommitsEmpty(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "abc\x03")
	if line != "" {
		t.Fatalf("ctrl-c = %q, want empty", line)
	}
}

func TestCtrlGCommitsAsIs(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "abc\x07")
	if line != "abc" {
		t.Fatalf("ctrl-g = %q, want %q", line, "abc")
	}
}

func TestCtrlDForwardDelete(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "abc\x1b[H\x04\r")
	if line != "bc" {
		t.Fatalf("ctrl-d = %q, want %q", line, "bc")
	}
}

func TestCtrlLClearsBuffer(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "junk\x0cok\r")
	if line != "ok" {
		t.Fatalf("ctrl-l = %q, want %q", line, "ok")
	}
}

func TestTranspose(t *testing.T) {
	e := New("> ")
	// ab<left>, Ctrl-T swaps around the cursor: cursor between a and b.
	line := typeKeys(t, e, "ab\x1b[D\x14\r")
	if line != "ba" {
		t.Fatalf("transpose = %q, want %q", line, "ba")
	}
	// At the start or with one grapheme it is a no-op.
	line = typeKeys(t, e, "a\x1b[H\x14\r")
	if line != "a" {
		t.Fatalf("transpose single = %q, want %q", line, "a")
	}
}

func TestTransposeMultibyte(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "a\U0001F44D\x1b[D\x14\r")
	if line != "\U0001F44Da" {
		t.Fatalf("transpose = %q", line)
	}
	checkEditorInvariants(t, e)
}

func TestCtrlKCutsToLineEnd(t *testing.T) {
	e := New("> ")
	// hello, Home, Right twice, Ctrl-K: keeps "he", clipboard "llo".
	line := typeKeys(t, e, "hello\x1b[H\x1b[C\x1b[C\x0b\r")
	if line != "he" {
		t.Fatalf("ctrl-k = %q, want %q", line, "he")
	}
	if got := string(e.clipboard); got != "llo" {
		t.Fatalf("clipboard = %q, want %q", got, "llo")
	}
}

func TestCtrlUCutsToLineStart(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "hello\x1b[D\x15\r")
	if line != "o" {
		t.Fatalf("ctrl-u = %q, want %q", line, "o")
	}
	if got := string(e.clipboard); got != "hell" {
		t.Fatalf("clipboard = %q, want %q", got, "hell")
	}
}

func TestTabInsertsWhenNoSuggestions(t *testing.T) {
	e := New("> ")
	line := typeKeys(t, e, "a\tb\r")
	if line != "a\tb" {
		t.Fatalf("line = %q, want %q", line, "a\tb")
	}
}

func TestResetLifecycle(t *testing.T) {
	e := New("> ")
	_ = typeKeys(t, e, "abc\x1b[1;2D\r") // leaves state behind
	e.reset()
	if e.buf.Len() != 0 || e.cursor != 0 || e.selection != selInvalid {
		t.Fatalf("reset left state: len=%d cursor=%d sel=%d",
			e.buf.Len(), e.cursor, e.selection)
	}
	if e.termRow != 0 || e.linesDrawn != 0 || e.firstVisibleCol != 0 {
		t.Fatalf("reset left render state")
	}
}

func TestStringWidth(t *testing.T) {
	e := New("> ")
	if got := e.stringWidth("abc"); got != 3 {
		t.Fatalf("width = %d, want 3", got)
	}
	if got := e.stringWidth("a\tb"); got != 4 {
		t.Fatalf("tab width = %d, want 4", got)
	}
	if got := e.stringWidth("你好"); got != 4 {
		t.Fatalf("cjk width = %d, want 4", got)
	}
}

func TestCustomSplitterAndWidth(t *testing.T) {
	e := New("> ")
	// A byte-at-a-time splitter with every byte two columns wide.
	e.SetGraphemeSplitter(func(b []byte) int { return 1 })
	e.SetGraphemeWidth(func(g []byte) int { return 2 })
	if got := e.stringWidth("ab"); got != 4 {
		t.Fatalf("width = %d, want 4", got)
	}
	line := typeKeys(t, e, "ab\x7f\r")
	if line != "a" {
		t.Fatalf("line = %q, want %q", line, "a")
	}
}

func TestUAX29Adapter(t *testing.T) {
	if got := UAX29GraphemeSplitter([]byte("e\u0301x")); got != 3 {
		t.Fatalf("uax29 split = %d, want 3", got)
	}
	if got := UAX29GraphemeWidth([]byte("你")); got != 2 {
		t.Fatalf("uax29 width = %d, want 2", got)
	}
	e := New("> ")
	e.SetGraphemeSplitter(UAX29GraphemeSplitter)
	e.SetGraphemeWidth(UAX29GraphemeWidth)
	line := typeKeys(t, e, "e\u0301\x7f\r")
	if line != "" {
		t.Fatalf("line = %q, want empty", line)
	}
}
