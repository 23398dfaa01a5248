// Package key decodes the raw byte stream produced by a terminal in
// raw mode into logical key events. Both platforms feed the same
// decoder: POSIX delivers these bytes natively, the Windows console
// backend translates its key records into the equivalent escape-byte
// stream first.
package key

import (
	"io"

	"github.com/kobzarvs/qline/internal/grapheme"
)

type Kind int

const (
	Unknown Kind = iota
	Character
	Return
	CtrlReturn
	Tab
	ShiftTab
	Delete
	Up
	Down
	Left
	Right
	Home
	End
	PageUp
	PageDown
	ShiftLeft
	ShiftRight
	Ctrl
	Alt
)

// Event is a single decoded keypress. Bytes holds the UTF-8 payload of
// Character and Alt events; Ctrl holds 'A'..'Z' for Ctrl events.
type Event struct {
	Kind  Kind
	Bytes []byte
	Ctrl  byte
}

type Decoder struct {
	r io.ByteReader
}

func NewDecoder(r io.ByteReader) *Decoder {
	return &Decoder{r: r}
}

const (
	backspaceCode  = 0x08
	tabCode        = 0x09
	ctrlReturnCode = 0x0A
	returnCode     = 0x0D
	escCode        = 0x1B
	deleteCode     = 0x7F
)

var escTable = map[string]Kind{
	"[A":    Up,
	"[B":    Down,
	"[C":    Right,
	"[D":    Left,
	"[H":    Home,
	"[F":    End,
	"[Z":    ShiftTab,
	"[5~":   PageUp,
	"[6~":   PageDown,
	"[1;2C": ShiftRight,
	"[1;2D": ShiftLeft,
}

const escMaxLen = 16

// Next blocks for one keypress. The only error it returns is the
// reader's own (io.EOF at end of input); partial escape sequences
// decode as Unknown rather than failing.
func (d *Decoder) Next() (Event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return Event{}, err
	}

	if b < 0x20 || b == deleteCode {
		switch b {
		case tabCode:
			return Event{Kind: Tab}, nil
		case ctrlReturnCode:
			return Event{Kind: CtrlReturn}, nil
		case returnCode:
			return Event{Kind: Return}, nil
		case backspaceCode, deleteCode:
			return Event{Kind: Delete}, nil
		case escCode:
			return d.escape(), nil
		}
		if b >= 0x01 && b <= 0x1A {
			return Event{Kind: Ctrl, Ctrl: 'A' + b - 1}, nil
		}
		return Event{Kind: Unknown}, nil
	}

	if b < 0x80 {
		return Event{Kind: Character, Bytes: []byte{b}}, nil
	}
	return d.utf8(b), nil
}

// escape consumes the remainder of an ESC-introduced sequence.
func (d *Decoder) escape() Event {
	b, err := d.r.ReadByte()
	if err != nil {
		return Event{Kind: Unknown}
	}

	if b != '[' {
		// Alt-modified key; the byte may open a multi-byte character.
		ev := d.utf8(b)
		if ev.Kind != Character {
			return Event{Kind: Unknown}
		}
		return Event{Kind: Alt, Bytes: ev.Bytes}
	}

	seq := make([]byte, 1, escMaxLen)
	seq[0] = '['
	for len(seq) < escMaxLen {
		c, err := d.r.ReadByte()
		if err != nil {
			return Event{Kind: Unknown}
		}
		seq = append(seq, c)
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '~' {
			break
		}
	}

	if kind, ok := escTable[string(seq)]; ok {
		return Event{Kind: kind}
	}
	return Event{Kind: Unknown}
}

// utf8 gathers the continuation bytes of a character whose leading
// byte is first. A truncated sequence decodes as Unknown.
func (d *Decoder) utf8(first byte) Event {
	n := grapheme.UTF8Len(first)
	buf := make([]byte, 1, n)
	buf[0] = first
	for len(buf) < n {
		c, err := d.r.ReadByte()
		if err != nil {
			return Event{Kind: Unknown}
		}
		buf = append(buf, c)
	}
	return Event{Kind: Character, Bytes: buf}
}
