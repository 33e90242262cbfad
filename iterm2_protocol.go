package termgfx

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/nfnt/resize"
)

// iterm2ChunkThreshold is the payload size above which the transmission
// is split into a MultipartFile/FilePart/FileEnd chain rather than a
// single File escape.
const iterm2ChunkThreshold = 0x40000

// ITerm2Protocol is the fixed, encoded iTerm2 variant: a complete inline
// image escape (pre-clear plus base64 PNG payload) and the cell rect it
// occupies.
type ITerm2Protocol struct {
	data   []byte
	area   Rect
	isTmux bool
}

func (i *ITerm2Protocol) Kind() ProtocolKind { return ITerm2 }
func (i *ITerm2Protocol) Area() Rect         { return i.area }
func (i *ITerm2Protocol) Payload() []byte    { return i.data }

// Render places the payload as the symbol of the top-left cell of the
// draw area and marks the rest "skip", same discipline as Sixel/Kitty.
func (i *ITerm2Protocol) Render(area Rect, buf CellBuffer) error {
	if area.Empty() || i.area.Empty() {
		return nil
	}
	if i.area.Width > area.Width || i.area.Height > area.Height {
		return nil
	}
	buf.SetRawContent(area.X, area.Y, string(i.data))
	renderSkipDiscipline(buf, area, i.area)
	return nil
}

// EncodeITerm2 resizes img to the target rect's pixel size, PNG-encodes
// it, and builds the inline image escape. Per §4.7 the payload is
// preceded by a per-row erase-and-descend sequence that pre-clears
// transparency ghosts left by a previous, larger image.
func EncodeITerm2(img image.Image, area Rect, font FontSize, isTmux bool) (*ITerm2Protocol, error) {
	if area.Empty() {
		return &ITerm2Protocol{area: area, isTmux: isTmux}, nil
	}

	pixelW := area.Width * int(font.CellWidth)
	pixelH := area.Height * int(font.CellHeight)
	resized := resize.Resize(uint(pixelW), uint(pixelH), img, resize.Lanczos3)

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, resized); err != nil {
		return nil, wrapError(KindImage, "png-encode for iterm2", err)
	}
	data := pngBuf.Bytes()

	var out bytes.Buffer
	for y := 0; y < area.Height; y++ {
		fmt.Fprintf(&out, "\x1b[%dX\x1b[1B", pixelW)
	}
	fmt.Fprintf(&out, "\x1b[%dA", area.Height)

	writeInlineImage(&out, data, pixelW, pixelH)

	payload := out.Bytes()
	if isTmux {
		payload = []byte(wrapTmuxPassthrough(string(payload)))
	}

	return &ITerm2Protocol{data: payload, area: area, isTmux: isTmux}, nil
}

// writeInlineImage emits either a single File escape or a
// MultipartFile/FilePart/FileEnd chain, depending on the encoded size,
// per §4.7 and the chunk threshold above.
func writeInlineImage(out *bytes.Buffer, data []byte, pixelW, pixelH int) {
	if len(data) <= iterm2ChunkThreshold {
		fmt.Fprintf(out, "\x1b]1337;File=inline=1;size=%d;width=%dpx;height=%dpx;doNotMoveCursor=1:%s\x07",
			len(data), pixelW, pixelH, base64Encode(data))
		return
	}

	chunks := chunkedBase64Encode(data, iterm2ChunkThreshold)
	for i, chunk := range chunks {
		switch i {
		case 0:
			fmt.Fprintf(out, "\x1b]1337;MultipartFile=inline=1;size=%d;width=%dpx;height=%dpx;doNotMoveCursor=1:%s\x07",
				len(data), pixelW, pixelH, chunk)
		default:
			fmt.Fprintf(out, "\x1b]1337;FilePart=inline=1:%s\x07", chunk)
		}
	}
	fmt.Fprint(out, "\x1b]1337;FileEnd\x07")
}
