//go:build windows

package term

import (
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/windows"
)

const utf8CodePage = 65001

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCP    = kernel32.NewProc("SetConsoleCP")
	procGetConsoleCP    = kernel32.NewProc("GetConsoleCP")
	procSetConsoleOutCP = kernel32.NewProc("SetConsoleOutputCP")
	procGetConsoleOutCP = kernel32.NewProc("GetConsoleOutputCP")
	procReadConsoleInpW = kernel32.NewProc("ReadConsoleInputW")
)

// State preserves the console modes and code pages prior to raw mode.
type State struct {
	in, out   windows.Handle
	inMode    uint32
	outMode   uint32
	inCP      uint32
	outCP     uint32
	restored  bool
	havestate bool
}

// EnableRaw reconfigures the console: line input, echo and input
// processing off, virtual-terminal input on; virtual-terminal
// processing on for output; UTF-8 code pages for both directions.
func EnableRaw(fd int) (*State, error) {
	in := windows.Handle(os.Stdin.Fd())
	out := windows.Handle(os.Stdout.Fd())

	s := &State{in: in, out: out}
	if err := windows.GetConsoleMode(in, &s.inMode); err != nil {
		return nil, err
	}
	if err := windows.GetConsoleMode(out, &s.outMode); err != nil {
		return nil, err
	}
	s.inCP = getConsoleCP(procGetConsoleCP)
	s.outCP = getConsoleCP(procGetConsoleOutCP)
	s.havestate = true

	inMode := s.inMode
	inMode &^= windows.ENABLE_LINE_INPUT | windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT
	inMode |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(in, inMode); err != nil {
		return nil, err
	}

	outMode := s.outMode | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	if err := windows.SetConsoleMode(out, outMode); err != nil {
		_ = windows.SetConsoleMode(in, s.inMode)
		return nil, err
	}

	setConsoleCP(procSetConsoleCP, utf8CodePage)
	setConsoleCP(procSetConsoleOutCP, utf8CodePage)
	return s, nil
}

// Restore puts the console modes and code pages back. Idempotent.
func (s *State) Restore() error {
	if s == nil || !s.havestate || s.restored {
		return nil
	}
	s.restored = true
	err := windows.SetConsoleMode(s.in, s.inMode)
	if e := windows.SetConsoleMode(s.out, s.outMode); err == nil {
		err = e
	}
	setConsoleCP(procSetConsoleCP, s.inCP)
	setConsoleCP(procSetConsoleOutCP, s.outCP)
	return err
}

func getConsoleCP(proc *windows.LazyProc) uint32 {
	cp, _, _ := proc.Call()
	return uint32(cp)
}

func setConsoleCP(proc *windows.LazyProc, cp uint32) {
	_, _, _ = proc.Call(uintptr(cp))
}

// Width reports the console window width, defaulting to 80.
func Width(fd int) int {
	var info windows.ConsoleScreenBufferInfo
	h := windows.Handle(os.Stdout.Fd())
	if err := windows.GetConsoleScreenBufferInfo(h, &info); err != nil {
		return 80
	}
	w := int(info.Window.Right-info.Window.Left) + 1
	if w <= 0 {
		return 80
	}
	return w
}

// CheckTTY reports whether both stdin and stdout are console handles.
func CheckTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// CheckSupported always holds on Windows; the console host interprets
// virtual-terminal sequences once raw mode enables them.
func CheckSupported() bool { return true }

// SetUTF8Mode switches both console code pages to UTF-8.
func SetUTF8Mode() {
	setConsoleCP(procSetConsoleCP, utf8CodePage)
	setConsoleCP(procSetConsoleOutCP, utf8CodePage)
}

// hookSignals watches interrupt-style signals; window resizes arrive
// as console input records, handled by the input reader.
func hookSignals() func() {
	graceful := make(chan os.Signal, 1)
	signal.Notify(graceful, os.Interrupt)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-graceful:
				emergencyRestore()
				os.Exit(1)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(graceful)
		close(done)
	}
}
