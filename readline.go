package qline

import (
	"bytes"
	"io"
	"os"

	"github.com/kobzarvs/qline/internal/key"
	"github.com/kobzarvs/qline/internal/logger"
	"github.com/kobzarvs/qline/internal/term"
)

// ReadLine reads one line of input. It returns the committed text, or
// io.EOF when input ends with nothing in the buffer. An empty line
// returns ("", nil).
//
// When standard input is not a terminal the line is read verbatim;
// when the terminal type is unsupported the prompt is printed and the
// line read through the OS. Otherwise the interactive editor runs in
// raw mode.
func (e *Editor) ReadLine() (string, error) {
	e.reset()
	if e.in == nil {
		e.in = term.NewInput()
	}

	if !term.CheckTTY() {
		return e.readNoTerminal()
	}
	if !term.CheckSupported() {
		return e.readUnsupported()
	}
	return e.readSupported()
}

// readNoTerminal consumes bytes up to a newline or EOF and returns
// them verbatim.
func (e *Editor) readNoTerminal() (string, error) {
	var line bytes.Buffer
	for {
		b, err := e.in.ReadByte()
		if err != nil {
			if line.Len() == 0 {
				return "", io.EOF
			}
			return line.String(), nil
		}
		if b == '\n' {
			return line.String(), nil
		}
		line.WriteByte(b)
	}
}

// readUnsupported prints the prompt, reads a line through the OS and
// strips trailing control characters.
func (e *Editor) readUnsupported() (string, error) {
	_, _ = io.WriteString(e.out, e.prompt)

	line, err := e.readNoTerminal()
	if err != nil {
		return line, err
	}
	i := len(line)
	for i > 0 && line[i-1] < 0x20 {
		i--
	}
	return line[:i], nil
}

// readSupported runs the interactive editor. Raw mode is released on
// every exit path; a failed raw-mode entry falls back to returning
// whatever the buffer already holds.
func (e *Editor) readSupported() (string, error) {
	if err := e.enterRaw(); err != nil {
		logger.Warn("raw mode entry failed", "err", err)
		return e.buf.String(), nil
	}
	defer e.exitRaw()

	e.termWidth = term.Width(int(os.Stdout.Fd()))
	line, err := e.interact()

	// Step below the edit area so host output starts on a fresh line.
	var out bytes.Buffer
	csiMove(&out, e.linesDrawn-1-e.termRow, 'B')
	out.WriteString("\r\n")
	_, _ = e.out.Write(out.Bytes())

	return line, err
}

// interact is the decode → dispatch → render loop. It assumes the
// terminal is already raw and e.termWidth is set.
func (e *Editor) interact() (string, error) {
	if e.termWidth <= 0 {
		e.termWidth = 80
	}
	if err := e.redraw(); err != nil {
		return "", err
	}

	dec := key.NewDecoder(e.in)
	for {
		ev, err := dec.Next()
		if err != nil {
			// End of input: hand back whatever was typed.
			if e.buf.Len() == 0 {
				return "", io.EOF
			}
			return e.buf.String(), nil
		}

		commit, err := e.handleKey(ev)
		if err != nil {
			return "", err
		}
		if commit {
			// A final repaint clears the ghost suggestion and
			// selection highlight from the committed line.
			e.clearSuggestions()
			e.clearSelection()
			_ = e.redraw()
			return e.buf.String(), nil
		}

		if term.ResizePending() {
			e.termWidth = term.Width(int(os.Stdout.Fd()))
			e.dirty = true
		}
		if e.dirty {
			if err := e.redraw(); err != nil {
				return "", err
			}
			e.dirty = false
		}
	}
}

// enterRaw switches the terminal into raw mode and registers the
// emergency restore hooks. A second call on an editor already in raw
// mode is a no-op.
func (e *Editor) enterRaw() error {
	if e.rawEntered {
		return nil
	}
	state, err := term.EnableRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	e.rawState = state
	e.rawEntered = true
	if e.handleSignals {
		term.InstallHandlers(func() { _ = state.Restore() })
	}
	logger.Debug("raw mode entered")
	return nil
}

// exitRaw restores the terminal. Idempotent.
func (e *Editor) exitRaw() {
	if !e.rawEntered {
		return
	}
	e.rawEntered = false
	if e.rawState != nil {
		_ = e.rawState.Restore()
		e.rawState = nil
	}
	if e.handleSignals {
		term.RemoveHandlers()
	}
	logger.Debug("raw mode exited")
}
