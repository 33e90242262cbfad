package termgfx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	saved := map[string]string{}
	for k := range kv {
		saved[k] = os.Getenv(k)
	}
	for k, v := range kv {
		os.Setenv(k, v)
	}
	defer func() {
		for k, v := range saved {
			os.Setenv(k, v)
		}
	}()
	fn()
}

func clearTerminalEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TERM", "TERM_PROGRAM", "LC_TERMINAL", "TMUX", "KITTY_WINDOW_ID", "ITERM_SESSION_ID", "WEZTERM_EXECUTABLE"} {
		os.Unsetenv(k)
	}
}

func TestScenarioAAutoDetectKitty(t *testing.T) {
	clearTerminalEnv(t)
	withEnv(t, map[string]string{"TERM": "xterm-kitty"}, func() {
		p := NewCapabilityParser()
		events := feedAll(p, "\x1b_Gi=31;OK\x1b\\\x1b[?64c\x1b[6;16;8t\x1b[0n")

		proto := decideProtocol(false, events)
		w, h := cellSizeFromEvents(events)

		assert.Equal(t, Kitty, proto)
		assert.Equal(t, uint16(8), w)
		assert.Equal(t, uint16(16), h)
	})
}

func TestScenarioBSixelViaDeviceAttributes(t *testing.T) {
	clearTerminalEnv(t)
	withEnv(t, map[string]string{"TERM": "xterm-256color"}, func() {
		p := NewCapabilityParser()
		events := feedAll(p, "\x1b[?62;4c\x1b[6;20;10t\x1b[0n")

		proto := decideProtocol(false, events)
		w, h := cellSizeFromEvents(events)

		assert.Equal(t, Sixel, proto)
		assert.Equal(t, uint16(10), w)
		assert.Equal(t, uint16(20), h)
	})
}

func TestScenarioCITermOverride(t *testing.T) {
	clearTerminalEnv(t)
	withEnv(t, map[string]string{"TERM_PROGRAM": "iTerm.app"}, func() {
		p := NewCapabilityParser()
		events := feedAll(p, "\x1b_Gi=31;OK\x1b\\\x1b[?64;4c\x1b[6;7;14t\x1b[0n")

		proto := decideProtocol(false, events)

		assert.Equal(t, ITerm2, proto)
	})
}

func TestFontSizeIoctlZeroDimensionsFail(t *testing.T) {
	saved := windowSizePixelsFn
	defer func() { windowSizePixelsFn = saved }()

	windowSizePixelsFn = func() (cols, rows, xpixel, ypixel int, ok bool) {
		return 0, 24, 0, 480, true
	}
	_, ok := fontSizeFromWindowSize()
	require.False(t, ok)

	windowSizePixelsFn = func() (cols, rows, xpixel, ypixel int, ok bool) {
		return 80, 24, 640, 480, true
	}
	font, ok := fontSizeFromWindowSize()
	require.True(t, ok)
	assert.True(t, font.Valid())
}
