package termgfx

import (
	"os"
	"strings"
	"time"

	"github.com/cellgfx/termgfx/pkg/csi"
)

// ProbeResult is the outcome of a capability handshake: the protocol the
// terminal appears to support, the cell pixel size, and whether the
// handshake had to be wrapped for tmux passthrough.
type ProbeResult struct {
	Protocol ProtocolKind
	Font     FontSize
	IsTmux   bool
}

const kittyTestQuery = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\"

// buildHandshakeQuery composes the single query string sent to the
// terminal: the Kitty graphics test, Primary Device Attributes, Cell
// pixel size, and Device Status Report, in that order. Under tmux the
// whole string is escaped and bracketed for passthrough.
func buildHandshakeQuery(isTmux bool) string {
	query := kittyTestQuery + "\x1b[c" + "\x1b[16t" + "\x1b[5n"
	if isTmux {
		return "\x1bPtmux;" + strings.ReplaceAll(query, "\x1b", "\x1b\x1b") + "\x1b\\"
	}
	return query
}

func isTmuxEnvironment() bool {
	return inTmux()
}

// Probe drives the raw-mode handshake against the controlling terminal
// and returns the protocol, font size, and tmux status it determined.
// It never panics and never leaves the terminal in raw mode on any exit
// path.
func Probe() (ProbeResult, error) {
	tmux := isTmuxEnvironment()
	if tmux {
		enableTmuxPassthrough()
	}

	parser := NewCapabilityParser()
	events, err := runHandshake(parser, tmux)
	if err != nil {
		return ProbeResult{}, err
	}

	result := ProbeResult{Protocol: decideProtocol(tmux, events), IsTmux: tmux}

	cellW, cellH := cellSizeFromEvents(events)
	if cellW > 0 && cellH > 0 {
		result.Font = FontSize{CellWidth: cellW, CellHeight: cellH}
	} else {
		font, ok := fontSizeFromWindowSize()
		if !ok {
			return ProbeResult{}, newError(KindNoFontSize, "handshake and window-size ioctl both failed to yield a cell size")
		}
		result.Font = font
	}

	return result, nil
}

// runHandshake opens the controlling terminal in raw mode, writes the
// composed query, and reads bytes into the parser until the Status
// event arrives or a read would block after some bytes have already
// been received.
func runHandshake(parser *CapabilityParser, tmux bool) ([]CapabilityEvent, error) {
	tty, restore, err := csi.OpenRawTTY()
	if err != nil {
		return nil, wrapError(KindIO, "open controlling terminal", err)
	}
	defer restore()

	query := buildHandshakeQuery(tmux)
	if _, err := tty.WriteString(query); err != nil {
		return nil, wrapError(KindIO, "write handshake query", err)
	}

	var events []CapabilityEvent
	deadline := time.Now().Add(csi.QueryTimeout)
	receivedAny := false
	buf := make([]byte, 256)

	for time.Now().Before(deadline) {
		tty.SetReadDeadline(time.Now().Add(csi.QueryTimeout))
		n, readErr := tty.Read(buf)
		if n > 0 {
			receivedAny = true
			for i := 0; i < n; i++ {
				events = append(events, parser.Feed(buf[i])...)
			}
			for _, e := range events {
				if e.Kind == EventStatus {
					return events, nil
				}
			}
		}
		if readErr != nil {
			if receivedAny {
				return events, nil
			}
			return events, wrapError(KindTimeout, "handshake read", readErr)
		}
		if n == 0 && receivedAny {
			return events, nil
		}
	}
	return events, nil
}

// cellSizeFromEvents extracts the last CellSize event that actually
// carried a size, per the handshake's single cell-size query.
func cellSizeFromEvents(events []CapabilityEvent) (uint16, uint16) {
	var w, h uint16
	for _, e := range events {
		if e.Kind == EventCellSize && e.HasCellSize {
			w, h = e.CellWidth, e.CellHeight
		}
	}
	return w, h
}

// decideProtocol runs the full decision logic from the handshake events
// down through the tmux guess and the environment overrides. Split out
// from Probe so the decision logic can be exercised without a real tty.
func decideProtocol(tmux bool, events []CapabilityEvent) ProtocolKind {
	guess := guessFromEnvironment(tmux)

	var sawKitty, sawSixel bool
	for _, e := range events {
		switch e.Kind {
		case EventKitty:
			sawKitty = true
		case EventSixel:
			sawSixel = true
		}
	}
	switch {
	case sawKitty:
		guess = Kitty
	case sawSixel:
		guess = Sixel
	}

	return applyEnvironmentOverrides(guess)
}

// guessFromEnvironment applies the tmux "magic variable" heuristic: under
// tmux a terminal-family hint in the environment is adopted as a starting
// guess before the handshake result (if any) and the final overrides are
// layered on.
func guessFromEnvironment(tmux bool) ProtocolKind {
	if !tmux {
		return Halfblocks
	}
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "":
		return Kitty
	case os.Getenv("ITERM_SESSION_ID") != "", os.Getenv("WEZTERM_EXECUTABLE") != "":
		return ITerm2
	}
	return Halfblocks
}

// applyEnvironmentOverrides applies the highest-precedence environment
// overrides, applied last so they win over both the tmux guess and the
// handshake result.
func applyEnvironmentOverrides(guess ProtocolKind) ProtocolKind {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	lcTerminal := os.Getenv("LC_TERMINAL")

	if strings.Contains(term, "kitty") {
		return Kitty
	}
	if term == "mlterm" || term == "yaft-256color" {
		return Sixel
	}
	switch termProgram {
	case "iTerm.app", "WezTerm", "mintty", "vscode", "Tabby", "Hyper":
		return ITerm2
	case "MacTerm":
		return Sixel
	}
	if strings.Contains(lcTerminal, "iTerm") {
		return ITerm2
	}
	return guess
}

// windowSizePixelsFn is a package-level indirection over csi.WindowSizePixels
// so tests can exercise the zero-dimension failure path without a real tty.
var windowSizePixelsFn = csi.WindowSizePixels

func fontSizeFromWindowSize() (FontSize, bool) {
	cols, rows, xpixel, ypixel, ok := windowSizePixelsFn()
	if !ok || cols <= 0 || rows <= 0 || xpixel <= 0 || ypixel <= 0 {
		return FontSize{}, false
	}
	return FontSize{
		CellWidth:  uint16(xpixel / cols),
		CellHeight: uint16(ypixel / rows),
	}, true
}
