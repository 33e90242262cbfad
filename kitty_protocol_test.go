package termgfx

import (
	"image/color"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKittyIDMonotoneModulo(t *testing.T) {
	a := nextKittyID()
	b := nextKittyID()
	assert.NotEqual(t, a, b)

	atomic.StoreUint32(&kittyNextID, ^uint32(0))
	wrapped := nextKittyID()
	assert.Equal(t, uint32(1), wrapped)
}

func TestKittyChunkingScenarioE(t *testing.T) {
	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	chain := buildKittyTransmitChain(7, 100, 100, payload, false)

	require.Len(t, chain, 3)
	assert.Contains(t, chain[0], "a=T,U=1")
	assert.Contains(t, chain[1], "m=1")
	assert.Contains(t, chain[2], "m=0")
}

func TestKittyRenderSkipDisciplineAndPlaceOnce(t *testing.T) {
	img := solidImage(8, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	font := FontSize{CellWidth: 8, CellHeight: 16}
	area := Rect{Width: 3, Height: 2}

	proto, err := EncodeKitty(img, area, font, nil, false)
	require.NoError(t, err)
	require.NotEmpty(t, proto.transmitChain)

	buf := newFakeCellBuffer()
	require.NoError(t, proto.Render(area, buf))

	firstRow := buf.raw[[2]int{0, 0}]
	assert.True(t, strings.Contains(firstRow, "\x1b_Gq=2"))
	assert.True(t, proto.placed)
	assert.Empty(t, proto.transmitChain)

	skipCount := 0
	for _, v := range buf.skip {
		if v {
			skipCount++
		}
	}
	assert.Equal(t, area.Width*area.Height-area.Height, skipCount)

	buf2 := newFakeCellBuffer()
	require.NoError(t, proto.Render(area, buf2))
	secondRow := buf2.raw[[2]int{0, 0}]
	assert.False(t, strings.Contains(secondRow, "\x1b_Gq=2"))
}

func TestKittyDiacriticClamping(t *testing.T) {
	assert.Equal(t, kittyDiacritics[0], kittyDiacritic(-1))
	assert.Equal(t, kittyDiacritics[0], kittyDiacritic(9999))
	assert.Equal(t, kittyDiacritics[5], kittyDiacritic(5))
}
