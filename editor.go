package qline

import (
	"errors"
	"io"
	"os"

	"github.com/kobzarvs/qline/internal/grapheme"
	"github.com/kobzarvs/qline/internal/strlist"
	"github.com/kobzarvs/qline/internal/term"
	"github.com/kobzarvs/qline/internal/textbuf"
)

const (
	defaultPrompt   = ">"
	defaultTabWidth = 2
)

// selInvalid marks an inactive selection anchor.
const selInvalid = -1

// Editor is a long-lived line editor handle. It is not safe for
// concurrent use.
type Editor struct {
	prompt     string
	contPrompt string

	buf       *textbuf.Buffer
	cursor    int // grapheme index, [0, GraphemeCount]
	selection int // anchor grapheme index or selInvalid
	clipboard []byte

	palette      []int
	syntaxFn     SyntaxColorFn
	syntaxRef    any
	completeFn   CompleteFn
	completeRef  any
	multilineFn  MultilineFn
	multilineRef any
	splitFn      SplitFn
	widthFn      WidthFn
	tabWidth     int

	history     *strlist.List
	historyMax  int // >0 cap, 0 disabled, <0 unlimited
	suggestions *strlist.List

	firstVisibleCol int
	screenCols      int
	termWidth       int

	termRow    int // row of the terminal cursor relative to the editor origin
	linesDrawn int // rows used by the previous redraw

	suggestionShown bool
	dirty           bool

	in            io.ByteReader
	out           io.Writer
	rawState      *term.State
	rawEntered    bool
	handleSignals bool
}

// New creates an editor that displays prompt. An empty prompt falls
// back to "> ".
func New(prompt string) *Editor {
	if prompt == "" {
		prompt = defaultPrompt + " "
	}
	e := &Editor{
		prompt:        prompt,
		selection:     selInvalid,
		tabWidth:      defaultTabWidth,
		history:       strlist.New(),
		historyMax:    -1,
		suggestions:   strlist.New(),
		out:           os.Stdout,
		handleSignals: true,
	}
	e.buf = textbuf.New(e.split)
	return e
}

// Close releases the editor. If the editor is somehow still in raw
// mode the terminal is restored first.
func (e *Editor) Close() {
	e.exitRaw()
}

// SetSyntaxColor installs the syntax colouring callback. ref is
// passed back opaquely on every invocation.
func (e *Editor) SetSyntaxColor(fn SyntaxColorFn, ref any) {
	e.syntaxFn = fn
	e.syntaxRef = ref
}

// SetPalette copies codes as the colour palette. An empty palette is
// rejected.
func (e *Editor) SetPalette(codes []int) error {
	if len(codes) == 0 {
		return errors.New("qline: empty palette")
	}
	e.palette = append([]int(nil), codes...)
	return nil
}

// SetAutocomplete installs the completion callback.
func (e *Editor) SetAutocomplete(fn CompleteFn, ref any) {
	e.completeFn = fn
	e.completeRef = ref
}

// SetMultiline installs the multi-line predicate. continuationPrompt
// is shown on lines after the first; when empty the main prompt is
// reused.
func (e *Editor) SetMultiline(fn MultilineFn, ref any, continuationPrompt string) {
	e.multilineFn = fn
	e.multilineRef = ref
	if continuationPrompt == "" {
		continuationPrompt = e.prompt
	}
	e.contPrompt = continuationPrompt
}

// SetGraphemeSplitter installs a custom grapheme splitter; nil
// restores the built-in heuristic.
func (e *Editor) SetGraphemeSplitter(fn SplitFn) {
	e.splitFn = fn
	e.buf.SetSplitter(e.split)
	e.clampCursor()
}

// SetGraphemeWidth installs a custom display width estimator; nil
// restores the built-in one.
func (e *Editor) SetGraphemeWidth(fn WidthFn) {
	e.widthFn = fn
}

// SetTabWidth sets how many columns a tab renders as.
func (e *Editor) SetTabWidth(n int) {
	if n > 0 {
		e.tabWidth = n
	}
}

// SetSignalHandlers controls whether ReadLine installs the
// terminal-restoring signal hooks while in raw mode. On by default.
func (e *Editor) SetSignalHandlers(enable bool) {
	e.handleSignals = enable
}

// split is the buffer's segmentation function: the host splitter when
// installed, the built-in heuristic otherwise. A host returning 0
// (incomplete) makes the buffer consume a single byte.
func (e *Editor) split(b []byte) int {
	if e.splitFn != nil {
		return e.splitFn(b)
	}
	return grapheme.Split(b)
}

// widthOf measures one grapheme in terminal columns.
func (e *Editor) widthOf(g []byte) int {
	if len(g) > 0 && g[0] == '\t' {
		return e.tabWidth
	}
	if e.widthFn != nil {
		return e.widthFn(g)
	}
	return grapheme.Width(g)
}

// stringWidth measures a string by segmenting it with the active
// splitter and summing grapheme widths.
func (e *Editor) stringWidth(s string) int {
	b := []byte(s)
	w := 0
	for i := 0; i < len(b); {
		n := e.split(b[i:])
		if n <= 0 {
			n = 1
		}
		if i+n > len(b) {
			n = len(b) - i
		}
		w += e.widthOf(b[i : i+n])
		i += n
	}
	return w
}

// cursorByte returns the byte offset of the cursor.
func (e *Editor) cursorByte() int {
	return e.buf.GraphemeStart(e.cursor)
}

func (e *Editor) clampCursor() {
	if e.cursor > e.buf.GraphemeCount() {
		e.cursor = e.buf.GraphemeCount()
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
}

// insert places p at the cursor and moves the cursor past the
// inserted run.
func (e *Editor) insert(p []byte) error {
	end, err := e.buf.Insert(e.cursorByte(), p)
	if err != nil {
		return err
	}
	e.cursor = e.buf.GraphemeAt(end)
	e.dirty = true
	return nil
}

// deleteKey implements the backspace action: remove the selection if
// one is active, else the grapheme before the cursor, else the
// grapheme under the cursor.
func (e *Editor) deleteKey() {
	if e.selection != selInvalid {
		e.deleteSelection()
		return
	}
	if e.cursor > 0 {
		e.buf.DeleteGrapheme(e.cursor - 1)
		e.cursor--
	} else {
		e.buf.DeleteGrapheme(e.cursor)
	}
	e.dirty = true
}

// deleteCurrent implements forward delete.
func (e *Editor) deleteCurrent() {
	e.buf.DeleteGrapheme(e.cursor)
	e.clampCursor()
	e.dirty = true
}

// clearBuffer empties the buffer and resets editing state bound to
// its contents.
func (e *Editor) clearBuffer() {
	e.buf.Clear()
	e.cursor = 0
	e.suggestionShown = false
	e.dirty = true
}

// lineBounds returns the current line's index and its byte range,
// excluding any trailing newline.
func (e *Editor) lineBounds() (row, start, end int) {
	row = e.buf.LineOf(e.cursorByte())
	start = e.buf.LineStart(row)
	end = e.buf.LineStart(row + 1)
	if row < e.buf.LineCount()-1 {
		// Drop the newline grapheme separating this line from the next.
		end = e.buf.GraphemeStart(e.buf.GraphemeAt(end) - 1)
	}
	return row, start, end
}

// reset restores the per-read state demanded before every ReadLine.
func (e *Editor) reset() {
	e.buf.Clear()
	e.cursor = 0
	e.selection = selInvalid
	e.history.ResetIndex()
	e.suggestions.Clear()
	e.suggestionShown = false
	e.firstVisibleCol = 0
	e.termRow = 0
	e.linesDrawn = 0
	e.dirty = false
}
