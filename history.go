package qline

import (
	"bufio"
	"os"
	"strings"

	"github.com/kobzarvs/qline/internal/strlist"
)

// SetHistoryLength bounds the history: positive caps it, 0 disables
// history entirely, negative means unlimited. Excess entries are
// trimmed from the front immediately.
func (e *Editor) SetHistoryLength(max int) {
	e.historyMax = max
	if max == 0 {
		e.history.Clear()
		return
	}
	if max > 0 {
		for e.history.Count() > max {
			e.history.PopFront()
		}
	}
}

// AddHistory appends entry, reporting whether it was accepted. Empty
// entries and entries equal to the most recent one are rejected.
func (e *Editor) AddHistory(entry string) bool {
	if entry == "" || e.historyMax == 0 {
		return false
	}
	if last, ok := e.history.Last(); ok && last == entry {
		return false
	}
	e.history.Append(entry)
	if e.historyMax > 0 {
		for e.history.Count() > e.historyMax {
			e.history.PopFront()
		}
	}
	return true
}

// HistoryCount reports the number of stored entries.
func (e *Editor) HistoryCount() int {
	return e.history.Count()
}

// LoadHistory appends each line of the named file to the history.
// Nothing is ever loaded unless the host asks.
func (e *Editor) LoadHistory(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		e.AddHistory(sc.Text())
	}
	return sc.Err()
}

// SaveHistory writes the history to the named file, one entry per
// line. Multi-line entries are stored with their newlines replaced by
// spaces so each entry stays on one line; LoadHistory reads such an
// entry back with spaces in place of its newlines.
func (e *Editor) SaveHistory(path string) error {
	var sb strings.Builder
	for i := 0; i < e.history.Count(); i++ {
		entry, _ := e.history.Get(i)
		sb.WriteString(strings.ReplaceAll(entry, "\n", " "))
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// browseHistory moves the history browse cursor by delta and loads
// the selected entry into the buffer. The first browse action starts
// at the most recent entry; subsequent moves clamp at the ends.
func (e *Editor) browseHistory(delta int) {
	if e.history.Count() == 0 {
		return
	}
	if e.history.Index() == strlist.Invalid {
		e.history.SetIndex(e.history.Count() - 1)
	} else {
		e.history.Advance(delta, false)
	}

	entry, ok := e.history.Current()
	if !ok {
		e.clearBuffer()
		return
	}
	e.buf.Clear()
	if err := e.insertAtEnd(entry); err != nil {
		return
	}
	e.cursor = e.buf.GraphemeCount()
	e.dirty = true
}

// insertAtEnd replaces cursor-relative insertion for history loads:
// the entry lands at offset 0 of the just-cleared buffer.
func (e *Editor) insertAtEnd(entry string) error {
	_, err := e.buf.Insert(e.buf.Len(), []byte(entry))
	return err
}

// endHistoryBrowse leaves browsing without touching the buffer.
func (e *Editor) endHistoryBrowse() {
	e.history.ResetIndex()
}
