// Package textbuf holds the editable byte buffer together with the two
// derived indices the editor navigates by: grapheme start offsets and
// line start offsets. Both indices carry a final sentinel equal to the
// buffer length so lookups never need a bounds special case.
package textbuf

import (
	"errors"
	"sort"
)

// SplitFunc returns the byte length of the first grapheme of b, or 0
// if b starts with an incomplete sequence.
type SplitFunc func(b []byte) int

// ErrTooLarge is returned when an insert would overflow the buffer's
// addressable size.
var ErrTooLarge = errors.New("textbuf: size overflow")

const initialCap = 128

// maxLen keeps required-capacity arithmetic from overflowing int.
const maxLen = int(^uint(0)>>1) - initialCap

type Buffer struct {
	data      []byte
	graphemes []int
	lines     []int
	split     SplitFunc
}

// New returns an empty buffer segmented by split.
func New(split SplitFunc) *Buffer {
	b := &Buffer{
		data:  make([]byte, 0, initialCap),
		split: split,
	}
	b.recompute()
	return b
}

// SetSplitter swaps the grapheme splitter and re-segments the buffer.
func (b *Buffer) SetSplitter(split SplitFunc) {
	b.split = split
	b.recompute()
}

func (b *Buffer) Len() int      { return len(b.data) }
func (b *Buffer) Bytes() []byte { return b.data }
func (b *Buffer) String() string {
	return string(b.data)
}

// GraphemeCount reports the number of graphemes in the buffer.
func (b *Buffer) GraphemeCount() int { return len(b.graphemes) - 1 }

// GraphemeStart returns the byte offset of grapheme i. i may equal
// GraphemeCount, in which case the buffer length is returned.
func (b *Buffer) GraphemeStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(b.graphemes) {
		return len(b.data)
	}
	return b.graphemes[i]
}

// Grapheme returns the bytes of grapheme i.
func (b *Buffer) Grapheme(i int) []byte {
	if i < 0 || i >= b.GraphemeCount() {
		return nil
	}
	return b.data[b.graphemes[i]:b.graphemes[i+1]]
}

// GraphemeAt returns the index of the first grapheme whose start byte
// is >= offset.
func (b *Buffer) GraphemeAt(offset int) int {
	return sort.SearchInts(b.graphemes[:len(b.graphemes)-1], offset)
}

// LineCount reports the number of lines: one more than the number of
// newline graphemes.
func (b *Buffer) LineCount() int { return len(b.lines) - 1 }

// LineStart returns the byte offset at which line i begins. i may
// equal LineCount, in which case the buffer length is returned.
func (b *Buffer) LineStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(b.lines) {
		return len(b.data)
	}
	return b.lines[i]
}

// LineOf returns the index of the line containing byte offset.
func (b *Buffer) LineOf(offset int) int {
	row := sort.SearchInts(b.lines[1:], offset+1)
	if row >= b.LineCount() {
		row = b.LineCount() - 1
	}
	return row
}

// Insert places p at the given byte offset and returns the byte offset
// immediately after the inserted run. The indices are recomputed
// before returning.
func (b *Buffer) Insert(offset int, p []byte) (int, error) {
	if len(p) == 0 {
		return offset, nil
	}
	if len(b.data) > maxLen-len(p) {
		return offset, ErrTooLarge
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.data) {
		offset = len(b.data)
	}

	b.data = append(b.data, p...) // grow, then shuffle into place
	copy(b.data[offset+len(p):], b.data[offset:])
	copy(b.data[offset:], p)

	b.recompute()
	return offset + len(p), nil
}

// Delete removes bytes [start, end). The caller guarantees the range
// lies within the buffer and on grapheme boundaries.
func (b *Buffer) Delete(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	if start >= end {
		return
	}
	b.data = append(b.data[:start], b.data[end:]...)
	b.recompute()
}

// DeleteGrapheme removes the byte range of grapheme i.
func (b *Buffer) DeleteGrapheme(i int) {
	if i < 0 || i >= b.GraphemeCount() {
		return
	}
	b.Delete(b.graphemes[i], b.graphemes[i+1])
}

// Recompute re-derives both indices after an in-place byte edit made
// through Bytes.
func (b *Buffer) Recompute() { b.recompute() }

// Clear empties the buffer, keeping its allocation.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.recompute()
}

// recompute rebuilds the grapheme and line indices. Every mutation
// ends here; no index consumer runs against a stale index.
func (b *Buffer) recompute() {
	b.graphemes = b.graphemes[:0]
	b.lines = b.lines[:0]
	b.lines = append(b.lines, 0)

	for i := 0; i < len(b.data); {
		b.graphemes = append(b.graphemes, i)
		n := b.split(b.data[i:])
		if n <= 0 {
			n = 1 // incomplete or malformed input still advances
		}
		if i+n > len(b.data) {
			n = len(b.data) - i
		}
		if b.data[i] == '\n' {
			b.lines = append(b.lines, i+n)
		}
		i += n
	}

	b.graphemes = append(b.graphemes, len(b.data))
	b.lines = append(b.lines, len(b.data))
}
