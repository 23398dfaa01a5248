//go:build !windows

package term

import (
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// State preserves the termios of a terminal before raw mode so it can
// be restored on every exit path.
type State struct {
	fd    int
	saved *xterm.State
}

// EnableRaw switches the terminal on fd into raw mode through
// x/term's MakeRaw: no input processing (IXON, ICRNL, BRKINT, ISTRIP,
// IGNBRK, PARMRK, INLCR, IGNCR), no output post-processing (OPOST),
// 8-bit chars (CS8, parity off), no echo/canonical/extended/signal
// handling (ECHO, ECHONL, ICANON, IEXTEN, ISIG), one-byte blocking
// reads. INPCK is not cleared; it keeps its prior setting.
func EnableRaw(fd int) (*State, error) {
	saved, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &State{fd: fd, saved: saved}, nil
}

// Restore puts the terminal back into its saved state. Idempotent.
func (s *State) Restore() error {
	if s == nil || s.saved == nil {
		return nil
	}
	err := xterm.Restore(s.fd, s.saved)
	s.saved = nil
	return err
}

// Width queries the terminal width of fd via TIOCGWINSZ, defaulting
// to 80 columns when the query fails.
func Width(fd int) int {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}

// CheckTTY reports whether both stdin and stdout are terminals.
func CheckTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// unsupportedTerms never handle the escape sequences the renderer
// emits.
var unsupportedTerms = []string{"dumb", "cons25", "emacs"}

// CheckSupported reports whether $TERM names a terminal the renderer
// can drive.
func CheckSupported() bool {
	return supportedTerm(os.Getenv("TERM"))
}

func supportedTerm(term string) bool {
	if term == "" {
		return false
	}
	for _, t := range unsupportedTerms {
		if strings.EqualFold(term, t) {
			return false
		}
	}
	return true
}

// SetUTF8Mode is a no-op on POSIX; terminals are assumed UTF-8.
func SetUTF8Mode() {}

// gracefulSignals get the terminal restored before the default
// disposition runs.
var gracefulSignals = []os.Signal{unix.SIGTERM, unix.SIGQUIT, unix.SIGHUP}

// hookSignals wires SIGWINCH to the resize flag and the graceful
// termination signals to an emergency restore followed by a re-raise
// under the default disposition. Crash signals (SIGSEGV and friends)
// stay with the Go runtime; the deferred raw-mode exit covers those
// paths. The returned function detaches everything.
func hookSignals() func() {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)

	graceful := make(chan os.Signal, 1)
	signal.Notify(graceful, gracefulSignals...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-winch:
				resizePending.Store(true)
			case sig := <-graceful:
				emergencyRestore()
				signal.Reset(sig)
				if s, ok := sig.(unix.Signal); ok {
					_ = unix.Kill(unix.Getpid(), s)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(winch)
		signal.Stop(graceful)
		close(done)
	}
}
