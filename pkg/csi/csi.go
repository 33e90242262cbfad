// Package csi implements the raw-mode query/response plumbing the
// capability probe uses to talk to the controlling terminal: opening
// /dev/tty, switching it to non-canonical no-echo mode, and falling back
// to the window-size ioctl when the terminal never answers the
// handshake.
package csi

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// QueryTimeout is the read deadline the probe sets on each read of the
// handshake reply; the probe also starts no new read once this long has
// passed since the query was written.
const QueryTimeout = 100 * time.Millisecond

// OpenRawTTY opens the controlling terminal and switches it to raw mode,
// returning a restore function that must be called on every exit path.
func OpenRawTTY() (tty *os.File, restore func(), err error) {
	tty, err = os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		tty.Close()
		return nil, nil, err
	}
	return tty, func() {
		term.Restore(int(tty.Fd()), oldState)
		tty.Close()
	}, nil
}

// WindowSizePixels reads TIOCGWINSZ on standard input, which
// carries both the character-cell size and the pixel size of the text
// area in one ioctl. Used as the capability probe's fallback when the
// handshake reply never carries a cell-size response.
func WindowSizePixels() (cols, rows, xpixel, ypixel int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdin.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return int(ws.Col), int(ws.Row), int(ws.Xpixel), int(ws.Ypixel), true
}

// QuerySupported is a heuristic: terminals known to reject or disable
// CSI queries shouldn't pay the handshake's read-timeout cost.
func QuerySupported() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal", "vscode":
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
