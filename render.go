package qline

import (
	"bytes"
	"os"
	"strconv"

	"github.com/kobzarvs/qline/internal/term"
)

const (
	escClearEOL   = "\x1b[K"
	escReset      = "\x1b[0m"
	escResetFg    = "\x1b[39m"
	escFaint      = "\x1b[2m"
	escInverse    = "\x1b[7m"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

func csiMove(out *bytes.Buffer, n int, dir byte) {
	if n <= 0 {
		return
	}
	out.WriteString("\x1b[")
	out.WriteString(strconv.Itoa(n))
	out.WriteByte(dir)
}

// promptFor returns the prompt shown in front of line i.
func (e *Editor) promptFor(i int) string {
	if i == 0 || e.contPrompt == "" {
		return e.prompt
	}
	return e.contPrompt
}

// paletteColor maps a span's palette index to a colour code;
// out-of-range indices fall back to the default colour.
func (e *Editor) paletteColor(idx int) int {
	if idx < 0 || idx >= len(e.palette) {
		return DefaultColor
	}
	return e.palette[idx]
}

// redraw repaints every line of the edit area and parks the terminal
// cursor on the logical cursor position. Output is assembled in one
// buffer and flushed with a single write.
func (e *Editor) redraw() error {
	var out bytes.Buffer
	out.WriteString(escHideCursor)

	// Return to the editor's origin: column 0 of the first line.
	out.WriteByte('\r')
	csiMove(&out, e.termRow, 'A')

	cb := e.cursorByte()
	cursorRow := e.buf.LineOf(cb)
	lineStartG := e.buf.GraphemeAt(e.buf.LineStart(cursorRow))

	cursorCols := 0
	for g := lineStartG; g < e.cursor; g++ {
		cursorCols += e.widthOf(e.buf.Grapheme(g))
	}

	promptW := e.stringWidth(e.promptFor(cursorRow))
	e.screenCols = e.termWidth - promptW - 1
	if e.screenCols < 1 {
		e.screenCols = 1
	}

	// Shift the viewport the minimum needed to expose the cursor.
	if cursorCols < e.firstVisibleCol {
		e.firstVisibleCol = cursorCols
	}
	if cursorCols >= e.firstVisibleCol+e.screenCols {
		e.firstVisibleCol = cursorCols - e.screenCols + 1
	}

	lineCount := e.buf.LineCount()
	cursorScreenCol := promptW
	for i := 0; i < lineCount; i++ {
		out.WriteByte('\r')
		col, onCursorLine := e.renderLine(&out, i, cursorRow)
		if onCursorLine {
			cursorScreenCol = col
		}
		if i < lineCount-1 {
			out.WriteByte('\n')
		}
	}

	// Blank any rows left over from a taller previous draw.
	extra := e.linesDrawn - lineCount
	for i := 0; i < extra; i++ {
		out.WriteString("\n\r")
		out.WriteString(escClearEOL)
	}
	if extra < 0 {
		extra = 0
	}

	out.WriteByte('\r')
	csiMove(&out, lineCount-1+extra-cursorRow, 'A')
	csiMove(&out, cursorScreenCol, 'C')
	out.WriteString(escShowCursor)

	e.termRow = cursorRow
	e.linesDrawn = lineCount

	_, err := e.out.Write(out.Bytes())
	return err
}

// renderLine draws line i: prompt, the viewport-clipped grapheme run
// with syntax colour and selection inverse video, the ghost
// suggestion on the final line, and a trailing clear when the drawn
// width is short of the viewport. It returns the terminal column of
// the logical cursor when the cursor sits on this line.
func (e *Editor) renderLine(out *bytes.Buffer, i, cursorRow int) (int, bool) {
	prompt := e.promptFor(i)
	out.WriteString(prompt)
	promptW := e.stringWidth(prompt)

	gStart := e.buf.GraphemeAt(e.buf.LineStart(i))
	gEnd := e.buf.GraphemeAt(e.buf.LineStart(i + 1))
	if i < e.buf.LineCount()-1 {
		gEnd-- // the newline grapheme is never drawn
	}

	selL, selR, _, _, hasSel := e.selectionRange()

	coloring := e.syntaxFn != nil && len(e.palette) > 0
	var bufStr string
	if coloring {
		bufStr = e.buf.String()
	}
	spanEnd := 0
	spanColor := DefaultColor
	colorDone := !coloring

	curColor := DefaultColor
	inverse := false

	onCursorLine := i == cursorRow
	cursorCol := promptW
	col := 0
	rendered := 0
	right := e.firstVisibleCol + e.screenCols

	for g := gStart; g < gEnd; g++ {
		gb := e.buf.Grapheme(g)
		w := e.widthOf(gb)

		if onCursorLine && g == e.cursor {
			cursorCol = promptW + col - e.firstVisibleCol
		}

		if col >= e.firstVisibleCol && col+w <= right {
			off := e.buf.GraphemeStart(g)
			if !colorDone && off >= spanEnd {
				span, ok := e.syntaxFn(bufStr, e.syntaxRef, off)
				if !ok || span.ByteEnd <= off {
					colorDone = true
					spanColor = DefaultColor
				} else {
					spanEnd = span.ByteEnd
					spanColor = e.paletteColor(span.Color)
				}
			}

			selected := hasSel && g >= selL && g < selR
			if selected && !inverse {
				out.WriteString(escInverse)
				inverse = true
			} else if !selected && inverse {
				out.WriteString(escReset)
				inverse = false
				curColor = DefaultColor // the reset dropped the foreground too
			}
			if spanColor != curColor {
				if spanColor == DefaultColor {
					out.WriteString(escResetFg)
				} else {
					emitColor(out, spanColor)
				}
				curColor = spanColor
			}

			if gb[0] == '\t' {
				for k := 0; k < e.tabWidth; k++ {
					out.WriteByte(' ')
				}
			} else {
				out.Write(gb)
			}
			rendered += w
		}
		col += w
	}

	if onCursorLine && e.cursor >= gEnd {
		cursorCol = promptW + col - e.firstVisibleCol
	}

	if inverse || curColor != DefaultColor {
		out.WriteString(escReset)
	}

	// Ghost suggestion past the cursor on the final line.
	if i == e.buf.LineCount()-1 && e.cursor == e.buf.GraphemeCount() {
		e.suggestionShown = false
		if s, ok := e.currentSuggestion(); ok && s != "" {
			sw := e.stringWidth(s)
			remaining := e.screenCols - (col - e.firstVisibleCol)
			if sw <= remaining {
				out.WriteString(escFaint)
				out.WriteString(s)
				out.WriteString(escReset)
				rendered += sw
				e.suggestionShown = true
			}
		}
	}

	if rendered < e.screenCols {
		out.WriteString(escClearEOL)
	}
	return cursorCol, onCursorLine
}

// emitColor appends the escape sequence selecting a packed colour
// code: ANSI basic, bright, xterm-256 or 24-bit RGB.
func emitColor(out *bytes.Buffer, code int) {
	switch {
	case code < 0:
	case code < 8:
		out.WriteString("\x1b[")
		out.WriteString(strconv.Itoa(30 + code))
		out.WriteByte('m')
	case code < 16:
		out.WriteString("\x1b[")
		out.WriteString(strconv.Itoa(90 + code - 8))
		out.WriteByte('m')
	case code < 256:
		out.WriteString("\x1b[38;5;")
		out.WriteString(strconv.Itoa(code))
		out.WriteByte('m')
	case code&rgbFlag != 0:
		out.WriteString("\x1b[38;2;")
		out.WriteString(strconv.Itoa(code >> 16 & 0xFF))
		out.WriteByte(';')
		out.WriteString(strconv.Itoa(code >> 8 & 0xFF))
		out.WriteByte(';')
		out.WriteString(strconv.Itoa(code & 0xFF))
		out.WriteByte('m')
	}
}

// DisplayWithSyntaxColoring writes s through the editor's syntax
// callback and palette, with no viewport clipping. The foreground is
// reset after each span; a missing or non-advancing span flushes the
// remainder uncoloured.
func (e *Editor) DisplayWithSyntaxColoring(s string) {
	var out bytes.Buffer
	offset := 0
	for offset < len(s) {
		spanEnd := len(s)
		color := DefaultColor
		if e.syntaxFn != nil {
			if span, ok := e.syntaxFn(s, e.syntaxRef, offset); ok && span.ByteEnd > offset {
				spanEnd = span.ByteEnd
				if spanEnd > len(s) {
					spanEnd = len(s)
				}
				color = e.paletteColor(span.Color)
			}
		}
		if color != DefaultColor {
			emitColor(&out, color)
		}
		e.writeExpanded(&out, s[offset:spanEnd])
		if color != DefaultColor {
			out.WriteString(escResetFg)
		}
		offset = spanEnd
	}
	_, _ = e.out.Write(out.Bytes())
}

// writeExpanded copies s with tabs expanded to spaces.
func (e *Editor) writeExpanded(out *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			for k := 0; k < e.tabWidth; k++ {
				out.WriteByte(' ')
			}
			continue
		}
		out.WriteByte(s[i])
	}
}

// Emit writes s straight to standard output.
func Emit(s string) {
	_, _ = os.Stdout.WriteString(s)
}

// EmitColor writes the escape sequence for a packed colour code to
// standard output.
func EmitColor(code int) {
	var out bytes.Buffer
	emitColor(&out, code)
	_, _ = os.Stdout.Write(out.Bytes())
}

// CheckTTY reports whether stdin and stdout are both terminals.
func CheckTTY() bool { return term.CheckTTY() }

// CheckSupported reports whether the terminal type can run the
// interactive editor.
func CheckSupported() bool { return term.CheckSupported() }

// TerminalWidth reports the current terminal width in columns.
func TerminalWidth() int { return term.Width(int(os.Stdout.Fd())) }

// SetUTF8Mode puts the console into UTF-8 mode where the platform
// needs it.
func SetUTF8Mode() { term.SetUTF8Mode() }
