package qline

import (
	"github.com/kobzarvs/qline/internal/key"
	"github.com/kobzarvs/qline/internal/logger"
)

// handleKey applies one decoded key event to the editor state.
// commit reports that the interactive read is finished.
func (e *Editor) handleKey(ev key.Event) (commit bool, err error) {
	clearSel := true  // most keys drop the selection anchor
	endBrowse := true // most keys leave history browsing
	regen := false    // regenerate suggestions afterwards

	switch ev.Kind {
	case key.Return:
		if e.multilineFn != nil && e.multilineFn(e.buf.String(), e.multilineRef) {
			err = e.insert([]byte{'\n'})
		} else {
			commit = true
		}

	case key.CtrlReturn:
		err = e.insert([]byte{'\n'})

	case key.Character:
		err = e.insert(ev.Bytes)
		regen = true

	case key.Tab:
		if e.hasSuggestions() {
			e.advanceSuggestion(1)
		} else {
			err = e.insert([]byte{'\t'})
			regen = true
		}

	case key.ShiftTab:
		if e.hasSuggestions() {
			e.advanceSuggestion(-1)
		}

	case key.Right:
		if e.suggestionShown {
			err = e.acceptSuggestion()
		} else {
			e.cursorRight()
			regen = true
		}

	case key.Left:
		e.cursorLeft()
		regen = true

	case key.ShiftLeft:
		e.beginSelection()
		e.cursorLeft()
		clearSel = false
		regen = true

	case key.ShiftRight:
		e.beginSelection()
		e.cursorRight()
		clearSel = false
		regen = true

	case key.Up:
		e.browseHistory(-1)
		endBrowse = false
		regen = true

	case key.Down:
		e.browseHistory(1)
		endBrowse = false
		regen = true

	case key.Home:
		e.cursorLineStart()
		regen = true

	case key.End:
		e.cursorLineEnd()
		regen = true

	case key.PageUp:
		e.cursor = 0
		regen = true

	case key.PageDown:
		e.cursor = e.buf.GraphemeCount()
		regen = true

	case key.Delete:
		e.deleteKey()
		clearSel = false // deleteKey consumed the selection itself
		regen = true

	case key.Ctrl:
		commit, clearSel, endBrowse, regen, err = e.handleCtrl(ev.Ctrl)

	case key.Alt:
		if len(ev.Bytes) == 1 && (ev.Bytes[0] == 'w' || ev.Bytes[0] == 'W') {
			e.copySelection()
		}
		regen = true

	default:
		// Unknown keys still trigger a redraw so a resize observed
		// between keystrokes repaints promptly.
	}

	if err != nil {
		return false, err
	}

	if clearSel {
		e.clearSelection()
	}
	if endBrowse {
		e.endHistoryBrowse()
	}
	if regen {
		e.generateSuggestions()
	}
	e.dirty = true

	logger.Debug("key dispatched",
		"kind", ev.Kind, "cursor", e.cursor, "graphemes", e.buf.GraphemeCount())
	return commit, nil
}

// handleCtrl dispatches Ctrl+letter shortcuts. It returns the same
// flag set handleKey maintains.
func (e *Editor) handleCtrl(c byte) (commit, clearSel, endBrowse, regen bool, err error) {
	clearSel, endBrowse, regen = true, true, true

	switch c {
	case 'A':
		e.cursorLineStart()
	case 'B':
		e.cursorLeft()
	case 'E':
		e.cursorLineEnd()
	case 'F':
		e.cursorRight()

	case 'C':
		e.clearBuffer()
		commit = true
		regen = false
	case 'G':
		commit = true
		clearSel, endBrowse, regen = false, false, false
	case 'D':
		e.clearSelection()
		e.deleteCurrent()

	case 'K':
		_, _, lineEnd := e.lineBounds()
		e.cutRange(e.cursorByte(), lineEnd)
	case 'U':
		_, lineStart, _ := e.lineBounds()
		e.cutRange(lineStart, e.cursorByte())

	case 'N':
		e.browseHistory(1)
		endBrowse, regen = false, false
	case 'P':
		e.browseHistory(-1)
		endBrowse, regen = false, false

	case 'L':
		e.clearBuffer()

	case 'O':
		e.copySelection()
	case 'V', 'Y':
		err = e.paste()
	case 'X':
		e.cutSelection()

	case 'T':
		e.transpose()

	default:
		regen = false
	}
	return commit, clearSel, endBrowse, regen, err
}

func (e *Editor) cursorLeft() {
	if e.cursor > 0 {
		e.cursor--
		e.dirty = true
	}
}

func (e *Editor) cursorRight() {
	if e.cursor < e.buf.GraphemeCount() {
		e.cursor++
		e.dirty = true
	}
}

// cursorLineStart moves to the first grapheme of the current line.
func (e *Editor) cursorLineStart() {
	_, start, _ := e.lineBounds()
	e.cursor = e.buf.GraphemeAt(start)
	e.dirty = true
}

// cursorLineEnd moves past the last grapheme of the current line,
// stopping before its newline.
func (e *Editor) cursorLineEnd() {
	_, _, end := e.lineBounds()
	e.cursor = e.buf.GraphemeAt(end)
	e.dirty = true
}

// transpose swaps the graphemes on either side of the cursor and
// advances the cursor one position.
func (e *Editor) transpose() {
	if e.cursor == 0 || e.cursor >= e.buf.GraphemeCount() || e.buf.GraphemeCount() < 2 {
		return
	}
	a := append([]byte(nil), e.buf.Grapheme(e.cursor-1)...)
	b := e.buf.Grapheme(e.cursor)

	start := e.buf.GraphemeStart(e.cursor - 1)
	end := e.buf.GraphemeStart(e.cursor + 1)
	swapped := make([]byte, 0, end-start)
	swapped = append(swapped, b...)
	swapped = append(swapped, a...)

	copy(e.buf.Bytes()[start:end], swapped)
	e.buf.Recompute()
	e.cursor++
	e.clampCursor()
	e.dirty = true
}
