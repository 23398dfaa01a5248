//go:build windows

package term

import (
	"io"
	"os"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Console input arrives as key-event records rather than bytes. The
// translator below maps virtual keys onto the same escape-byte stream
// a POSIX terminal produces, so one decoder serves both platforms.

const (
	keyEvent              = 0x0001
	windowBufferSizeEvent = 0x0004

	vkBack   = 0x08
	vkTab    = 0x09
	vkReturn = 0x0D
	vkPrior  = 0x21
	vkNext   = 0x22
	vkEnd    = 0x23
	vkHome   = 0x24
	vkLeft   = 0x25
	vkUp     = 0x26
	vkRight  = 0x27
	vkDown   = 0x28
	vkDelete = 0x2E

	shiftPressed    = 0x0010
	leftCtrlPressed = 0x0008
	rightCtrlPress  = 0x0004
	leftAltPressed  = 0x0002
	rightAltPressed = 0x0001
)

type inputRecord struct {
	eventType uint16
	_         uint16
	event     [16]byte
}

type keyEventRecord struct {
	keyDown         int32
	repeatCount     uint16
	virtualKeyCode  uint16
	virtualScanCode uint16
	unicodeChar     uint16
	controlKeyState uint32
}

// inputReader drains console input records into a byte queue.
type inputReader struct {
	h       windows.Handle
	pending []byte
	highSur uint16
}

// NewInput returns the translated keystroke byte stream.
func NewInput() io.ByteReader {
	return &inputReader{h: windows.Handle(os.Stdin.Fd())}
}

func (r *inputReader) ReadByte() (byte, error) {
	for len(r.pending) == 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	b := r.pending[0]
	r.pending = r.pending[1:]
	return b, nil
}

func (r *inputReader) fill() error {
	var rec inputRecord
	var n uint32
	ret, _, err := procReadConsoleInpW.Call(
		uintptr(r.h),
		uintptr(unsafe.Pointer(&rec)),
		1,
		uintptr(unsafe.Pointer(&n)),
	)
	if ret == 0 {
		if err != nil {
			return err
		}
		return io.EOF
	}
	if n == 0 {
		return nil
	}

	switch rec.eventType {
	case windowBufferSizeEvent:
		resizePending.Store(true)
	case keyEvent:
		ke := (*keyEventRecord)(unsafe.Pointer(&rec.event[0]))
		if ke.keyDown != 0 {
			for i := uint16(0); i < ke.repeatCount; i++ {
				r.translate(ke)
			}
		}
	}
	return nil
}

func (r *inputReader) emit(b ...byte) {
	r.pending = append(r.pending, b...)
}

func (r *inputReader) emitEsc(seq string) {
	r.emit(0x1B)
	r.emit([]byte(seq)...)
}

// translate appends the POSIX byte rendition of one key-down record.
func (r *inputReader) translate(ke *keyEventRecord) {
	shift := ke.controlKeyState&shiftPressed != 0
	ctrl := ke.controlKeyState&(leftCtrlPressed|rightCtrlPress) != 0
	alt := ke.controlKeyState&(leftAltPressed|rightAltPressed) != 0

	switch ke.virtualKeyCode {
	case vkUp:
		r.emitEsc("[A")
		return
	case vkDown:
		r.emitEsc("[B")
		return
	case vkRight:
		if shift {
			r.emitEsc("[1;2C")
		} else {
			r.emitEsc("[C")
		}
		return
	case vkLeft:
		if shift {
			r.emitEsc("[1;2D")
		} else {
			r.emitEsc("[D")
		}
		return
	case vkHome:
		r.emitEsc("[H")
		return
	case vkEnd:
		r.emitEsc("[F")
		return
	case vkPrior:
		r.emitEsc("[5~")
		return
	case vkNext:
		r.emitEsc("[6~")
		return
	case vkDelete:
		r.emit(0x04) // forward delete, same binding as Ctrl-D
		return
	case vkTab:
		if shift {
			r.emitEsc("[Z")
		} else {
			r.emit(0x09)
		}
		return
	case vkReturn:
		if ctrl {
			r.emit(0x0A)
		} else {
			r.emit(0x0D)
		}
		return
	case vkBack:
		r.emit(0x7F)
		return
	}

	c := ke.unicodeChar
	if c == 0 {
		return
	}

	if ctrl && c < 0x20 { // the console already folded Ctrl+letter
		r.emit(byte(c))
		return
	}

	if utf16.IsSurrogate(rune(c)) {
		if r.highSur == 0 {
			r.highSur = c
			return
		}
		cp := utf16.DecodeRune(rune(r.highSur), rune(c))
		r.highSur = 0
		r.emitRune(cp, alt)
		return
	}
	r.highSur = 0
	r.emitRune(rune(c), alt)
}

func (r *inputReader) emitRune(cp rune, alt bool) {
	if alt {
		r.emit(0x1B)
	}
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], cp)
	r.emit(buf[:n]...)
}
