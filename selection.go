package qline

// beginSelection anchors a selection at the cursor. Idempotent while
// a selection is active.
func (e *Editor) beginSelection() {
	if e.selection == selInvalid {
		e.selection = e.cursor
	}
}

// clearSelection drops the anchor without touching the buffer.
func (e *Editor) clearSelection() {
	e.selection = selInvalid
}

// selectionRange returns the active selection normalised to
// [l, r) in graphemes and [lb, rb) in bytes. ok is false when no
// selection is active.
func (e *Editor) selectionRange() (l, r, lb, rb int, ok bool) {
	if e.selection == selInvalid {
		return 0, 0, 0, 0, false
	}
	l, r = e.selection, e.cursor
	if l > r {
		l, r = r, l
	}
	return l, r, e.buf.GraphemeStart(l), e.buf.GraphemeStart(r), true
}

// copySelection copies the selected bytes into the clipboard.
func (e *Editor) copySelection() {
	_, _, lb, rb, ok := e.selectionRange()
	if !ok {
		return
	}
	e.clipboard = append(e.clipboard[:0], e.buf.Bytes()[lb:rb]...)
}

// deleteSelection removes the selected range and moves the cursor to
// its left edge.
func (e *Editor) deleteSelection() {
	l, _, lb, rb, ok := e.selectionRange()
	if !ok {
		return
	}
	e.buf.Delete(lb, rb)
	e.cursor = l
	e.clampCursor()
	e.selection = selInvalid
	e.dirty = true
}

// cutSelection copies then deletes the selection.
func (e *Editor) cutSelection() {
	e.copySelection()
	e.deleteSelection()
}

// cutRange copies bytes [lb, rb) into the clipboard and deletes them.
// Used by the cut-to-line-start/end shortcuts.
func (e *Editor) cutRange(lb, rb int) {
	if lb >= rb {
		return
	}
	e.clipboard = append(e.clipboard[:0], e.buf.Bytes()[lb:rb]...)
	e.buf.Delete(lb, rb)
	e.cursor = e.buf.GraphemeAt(lb)
	e.clampCursor()
	e.dirty = true
}

// paste first deletes any active selection, then inserts the
// clipboard at the cursor. An empty clipboard is a no-op.
func (e *Editor) paste() error {
	if len(e.clipboard) == 0 {
		return nil
	}
	if e.selection != selInvalid {
		e.deleteSelection()
	}
	return e.insert(e.clipboard)
}
