package termgfx

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestITerm2RenderSkipDiscipline(t *testing.T) {
	img := solidImage(16, 16, color.RGBA{G: 255, A: 255})
	font := FontSize{CellWidth: 8, CellHeight: 16}
	area := Rect{Width: 2, Height: 2}

	proto, err := EncodeITerm2(img, area, font, false)
	require.NoError(t, err)
	require.NotEmpty(t, proto.Payload())
	assert.Contains(t, string(proto.Payload()), "File=inline=1")

	buf := newFakeCellBuffer()
	require.NoError(t, proto.Render(area, buf))
	assert.Len(t, buf.raw, 1)

	skipped := 0
	for _, v := range buf.skip {
		if v {
			skipped++
		}
	}
	assert.Equal(t, area.Width*area.Height-1, skipped)
}

func TestITerm2MultipartAboveThreshold(t *testing.T) {
	data := make([]byte, iterm2ChunkThreshold*2+10)
	var out []byte
	chunks := chunkedBase64Encode(data, iterm2ChunkThreshold)
	require.Len(t, chunks, 3)
	_ = out
}

func TestITerm2EmptyAreaNoOp(t *testing.T) {
	img := solidImage(4, 4, color.White)
	proto, err := EncodeITerm2(img, Rect{}, FontSize{CellWidth: 8, CellHeight: 16}, false)
	require.NoError(t, err)
	assert.Empty(t, proto.Payload())
}
