package termgfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(p *CapabilityParser, s string) []CapabilityEvent {
	var out []CapabilityEvent
	for i := 0; i < len(s); i++ {
		out = append(out, p.Feed(s[i])...)
	}
	return out
}

func TestCapabilityParserRoundTrip(t *testing.T) {
	p := NewCapabilityParser()
	reply := "\x1b_Gi=31;OK\x1b\\\x1b[?64;4c\x1b[6;7;14t\x1b[0n"

	events := feedAll(p, reply)

	require.Len(t, events, 4)
	assert.Equal(t, EventKitty, events[0].Kind)
	assert.Equal(t, EventSixel, events[1].Kind)
	assert.Equal(t, EventCellSize, events[2].Kind)
	assert.True(t, events[2].HasCellSize)
	assert.Equal(t, uint16(14), events[2].CellWidth)
	assert.Equal(t, uint16(7), events[2].CellHeight)
	assert.Equal(t, EventStatus, events[3].Kind)
}

func TestCapabilityParserRecovery(t *testing.T) {
	p := NewCapabilityParser()
	garbage := "garbage\x1bmore-garbage"
	valid := "\x1b[0n"

	events := feedAll(p, garbage+valid)

	require.Len(t, events, 1)
	assert.Equal(t, EventStatus, events[0].Kind)
}

func TestCapabilityParserScenarioA(t *testing.T) {
	p := NewCapabilityParser()
	reply := "\x1b_Gi=31;OK\x1b\\\x1b[?64c\x1b[6;16;8t\x1b[0n"

	events := feedAll(p, reply)

	var haveKitty, haveCellSize bool
	var w, h uint16
	for _, e := range events {
		switch e.Kind {
		case EventKitty:
			haveKitty = true
		case EventCellSize:
			haveCellSize = true
			w, h = e.CellWidth, e.CellHeight
		}
	}
	assert.True(t, haveKitty)
	assert.True(t, haveCellSize)
	assert.Equal(t, uint16(8), w)
	assert.Equal(t, uint16(16), h)
}

func TestCapabilityParserScenarioB(t *testing.T) {
	p := NewCapabilityParser()
	reply := "\x1b[?62;4c\x1b[6;20;10t\x1b[0n"

	events := feedAll(p, reply)

	var haveSixel, haveKitty bool
	for _, e := range events {
		switch e.Kind {
		case EventSixel:
			haveSixel = true
		case EventKitty:
			haveKitty = true
		}
	}
	assert.True(t, haveSixel)
	assert.False(t, haveKitty)
}
