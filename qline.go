// Package qline is an embeddable interactive line editor. It presents
// a prompt, maintains an editable UTF-8 buffer, renders through
// ANSI/VT escape sequences and returns the committed text to the host.
// Editing is grapheme-cluster aware, with a horizontal scrolling
// viewport, selection and clipboard, ghost autocomplete suggestions,
// host-driven syntax colouring, bounded history and opt-in multi-line
// editing.
//
// A minimal host loop:
//
//	ed := qline.New("> ")
//	defer ed.Close()
//	for {
//		line, err := ed.ReadLine()
//		if err != nil {
//			break
//		}
//		ed.AddHistory(line)
//		fmt.Println("got:", line)
//	}
package qline

// ColorSpan is one coloured run of the buffer, reported by a
// SyntaxColorFn: bytes up to (but not including) ByteEnd take the
// palette entry at Color.
type ColorSpan struct {
	ByteEnd int
	Color   int
}

// SyntaxColorFn reports the colour span starting at offset. Returning
// ok=false, or a span whose ByteEnd does not advance past offset,
// leaves the remainder of the line uncoloured.
type SyntaxColorFn func(buf string, ref any, offset int) (span ColorSpan, ok bool)

// CompleteFn enumerates completion suffixes for buf. index starts at
// zero and is otherwise opaque to the editor; the callback updates it
// between calls. Return the text to append at the cursor, not the full
// match; ok=false ends enumeration.
type CompleteFn func(buf string, ref any, index *int) (suffix string, ok bool)

// MultilineFn reports whether buf needs more lines. Called on each
// Return; should be pure and fast.
type MultilineFn func(buf string, ref any) bool

// SplitFn returns the byte length of the first grapheme of b, or 0
// when b opens with an incomplete sequence (the editor then consumes a
// single byte to make progress).
type SplitFn func(b []byte) int

// WidthFn returns the display width in terminal columns of a single
// grapheme.
type WidthFn func(g []byte) int

// Basic ANSI palette codes.
const (
	Black = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

// DefaultColor selects the terminal's default foreground.
const DefaultColor = -1

// rgbFlag marks a packed 24-bit colour code.
const rgbFlag = 0x01000000

// Ansi216 returns the xterm-256 cube entry for r, g, b in 0..5.
func Ansi216(r, g, b int) int {
	return 16 + 36*r + 6*g + b
}

// RGB packs a 24-bit colour into a palette code.
func RGB(r, g, b uint8) int {
	return rgbFlag | int(r)<<16 | int(g)<<8 | int(b)
}
