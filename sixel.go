package termgfx

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/makeworld-the-better-one/dither/v2"
	sixelenc "github.com/mattn/go-sixel"
	"github.com/nfnt/resize"
	"github.com/soniakeys/quant/median"
)

// SixelProtocol is the fixed, encoded Sixel variant: a complete DEC Sixel
// byte stream plus the cell rect it occupies.
type SixelProtocol struct {
	data   []byte
	area   Rect
	isTmux bool
}

func (s *SixelProtocol) Kind() ProtocolKind { return Sixel }
func (s *SixelProtocol) Area() Rect         { return s.area }

// Render places the entire sixel payload as the symbol of the top-left
// cell of the draw area and marks every other covered cell "skip" so the
// cell diff engine never paints characters over the sixel footprint. If
// the encoded rect exceeds the draw area, nothing is rendered; there is
// no option to overdraw.
func (s *SixelProtocol) Render(area Rect, buf CellBuffer) error {
	if area.Empty() || s.area.Empty() {
		return nil
	}
	if s.area.Width > area.Width || s.area.Height > area.Height {
		return nil
	}

	buf.SetRawContent(area.X, area.Y, string(s.data))
	renderSkipDiscipline(buf, area, s.area)
	return nil
}

// renderSkipDiscipline marks every covered cell except the top-left one
// as "skip", the discipline shared by Sixel, Kitty, and iTerm2.
func renderSkipDiscipline(buf CellBuffer, drawArea, encodedArea Rect) {
	w := minInt(encodedArea.Width, drawArea.Width)
	h := minInt(encodedArea.Height, drawArea.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 && y == 0 {
				continue
			}
			buf.SetSkip(drawArea.X+x, drawArea.Y+y, true)
		}
	}
}

// Payload returns the raw escape-sequence bytes the host transport
// should write to stdout for this protocol's top-left cell, already
// tmux-wrapped if needed.
func (s *SixelProtocol) Payload() []byte { return s.data }

// EncodeSixel resizes img to fit the target rect in pixels (rect cells
// times font size), quantizes it with a Stucki-dithered median-cut
// palette, and encodes it to a Sixel byte stream.
func EncodeSixel(img image.Image, area Rect, font FontSize, isTmux bool) (*SixelProtocol, error) {
	if area.Empty() {
		return &SixelProtocol{area: area, isTmux: isTmux}, nil
	}

	targetW := uint(area.Width) * uint(font.CellWidth)
	targetH := uint(area.Height) * uint(font.CellHeight)
	resized := resize.Resize(targetW, targetH, img, resize.Lanczos3)

	quantized := quantizeForSixel(resized)

	var buf bytes.Buffer
	enc := sixelenc.NewEncoder(&buf)
	enc.Colors = 256
	enc.Dither = true
	if err := enc.Encode(quantized); err != nil {
		return nil, wrapError(KindSixel, "encode sixel stream", err)
	}

	payload := append([]byte("\x1bPq"), buf.Bytes()...)
	payload = append(payload, []byte("\x1b\\")...)

	if isTmux {
		payload = []byte(wrapTmuxPassthrough(string(payload)))
	}

	return &SixelProtocol{data: payload, area: area, isTmux: isTmux}, nil
}

// quantizeForSixel reduces img to a 256-color palette via median cut and
// applies Stucki dithering, the fixed parameters the spec calls for
// (Stucki dither, high quality, automatic color reduction).
func quantizeForSixel(img image.Image) image.Image {
	quantizer := median.Quantizer(256)
	palette := quantizer.Palette(img).ColorPalette()

	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.Stucki

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	return ditherer.Dither(rgba)
}
