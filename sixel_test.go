package termgfx

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSixelRenderSkipDiscipline(t *testing.T) {
	img := solidImage(20, 20, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	font := FontSize{CellWidth: 8, CellHeight: 16}
	area := Rect{Width: 4, Height: 3}

	proto, err := EncodeSixel(img, area, font, false)
	require.NoError(t, err)
	require.NotEmpty(t, proto.Payload())

	buf := newFakeCellBuffer()
	require.NoError(t, proto.Render(area, buf))

	skipped := 0
	for _, v := range buf.skip {
		if v {
			skipped++
		}
	}
	assert.Equal(t, area.Width*area.Height-1, skipped)
	assert.Len(t, buf.raw, 1)
}

func TestSixelOverdrawWithoutForceRendersNothing(t *testing.T) {
	img := solidImage(4, 4, color.White)
	font := FontSize{CellWidth: 8, CellHeight: 16}
	encoded := Rect{Width: 10, Height: 10}

	proto, err := EncodeSixel(img, encoded, font, false)
	require.NoError(t, err)

	buf := newFakeCellBuffer()
	smallerDraw := Rect{Width: 5, Height: 5}
	require.NoError(t, proto.Render(smallerDraw, buf))
	assert.Empty(t, buf.raw)
	assert.Empty(t, buf.skip)
}

func TestSixelEmptyAreaIsNoOp(t *testing.T) {
	img := solidImage(4, 4, color.White)
	proto, err := EncodeSixel(img, Rect{}, FontSize{CellWidth: 8, CellHeight: 16}, false)
	require.NoError(t, err)
	assert.True(t, proto.Area().Empty())
	assert.Empty(t, proto.Payload())
}
