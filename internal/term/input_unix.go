//go:build !windows

package term

import (
	"bufio"
	"io"
	"os"
)

// NewInput returns the raw keystroke byte stream. On POSIX the
// terminal already delivers escape-byte sequences; a small buffered
// reader keeps multi-byte sequences cheap without reading ahead of
// the user.
func NewInput() io.ByteReader {
	return bufio.NewReaderSize(os.Stdin, 64)
}
