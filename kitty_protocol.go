package termgfx

import (
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync/atomic"

	"github.com/nfnt/resize"
)

// kittyNextID is the process-scoped counter handed out to each new
// Kitty protocol instance. It increments per construction and wraps to
// 1 on overflow so it is never 0, per §5's ordering guarantee.
var kittyNextID uint32

func nextKittyID() uint32 {
	for {
		cur := atomic.LoadUint32(&kittyNextID)
		next := cur + 1
		if next == 0 {
			next = 1
		}
		if atomic.CompareAndSwapUint32(&kittyNextID, cur, next) {
			return next
		}
	}
}

// KittyProtocol is the fixed, encoded Kitty variant. transmitChain holds
// the chunked APC transmission and is consumed (emptied) after its first
// render; subsequent renders only emit the placeholder placement.
type KittyProtocol struct {
	id            uint32
	area          Rect
	pixelW        int
	pixelH        int
	transmitChain []string // pre-built APC sequences, consumed on first render
	isTmux        bool
	placed        bool
}

func (k *KittyProtocol) Kind() ProtocolKind { return Kitty }
func (k *KittyProtocol) Area() Rect         { return k.area }
func (k *KittyProtocol) ID() uint32         { return k.id }

// EncodeKitty converts img to RGB8 at the target rect's pixel size,
// splits it into 4000-byte chunks, and builds the chain of APC
// transmission sequences (virtual placement, U=1). Placement into the
// Unicode placeholder grid happens separately on Render.
func EncodeKitty(img image.Image, area Rect, font FontSize, idCounter func() uint32, isTmux bool) (*KittyProtocol, error) {
	if idCounter == nil {
		idCounter = nextKittyID
	}
	proto := &KittyProtocol{id: idCounter(), area: area, isTmux: isTmux}
	if area.Empty() {
		return proto, nil
	}

	pixelW := area.Width * int(font.CellWidth)
	pixelH := area.Height * int(font.CellHeight)
	proto.pixelW, proto.pixelH = pixelW, pixelH

	resized := resize.Resize(uint(pixelW), uint(pixelH), img, resize.Lanczos3)
	rgb := toRGB8(resized, pixelW, pixelH)

	proto.transmitChain = buildKittyTransmitChain(proto.id, pixelW, pixelH, rgb, isTmux)
	return proto, nil
}

func toRGB8(img image.Image, w, h int) []byte {
	b := img.Bounds()
	out := make([]byte, 0, w*h*3)
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		out = append(out, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
	}
	return out
}

// buildKittyTransmitChain splits rgb into kittyChunkSize pieces and
// builds the APC sequence chain: the first chunk carries a=T,U=1 and the
// w/h/format parameters; middle chunks carry m=1; the last carries m=0.
func buildKittyTransmitChain(id uint32, w, h int, rgb []byte, isTmux bool) []string {
	chunks := chunkedBase64Encode(rgb, kittyChunkSize)
	chain := make([]string, 0, len(chunks))

	for i, payload := range chunks {
		more := 0
		if i < len(chunks)-1 {
			more = 1
		}
		var seq string
		if i == 0 {
			seq = fmt.Sprintf("\x1b_Gq=2,i=%d,a=T,U=1,f=24,t=d,s=%d,v=%d,m=%d;%s\x1b\\", id, w, h, more, payload)
		} else {
			seq = fmt.Sprintf("\x1b_Gq=2,i=%d,m=%d;%s\x1b\\", id, more, payload)
		}
		if isTmux {
			seq = wrapTmuxPassthrough(seq)
		}
		chain = append(chain, seq)
	}
	return chain
}

// Render places the Kitty payload into the draw area. On the first call
// after an encode it prepends the pending transmit chain to the first
// row's first cell and then drops to place-only for subsequent renders.
func (k *KittyProtocol) Render(area Rect, buf CellBuffer) error {
	if area.Empty() || k.area.Empty() {
		return nil
	}

	w := minInt(k.area.Width, area.Width)
	h := minInt(k.area.Height, area.Height)

	transmit := ""
	if !k.placed {
		transmit = strings.Join(k.transmitChain, "")
		k.placed = true
		k.transmitChain = nil
	}

	for y := 0; y < h; y++ {
		row := buildKittyPlaceholderRow(k.id, y, w)
		if y == 0 {
			row = transmit + row
		}
		buf.SetRawContent(area.X, area.Y+y, row)
		for x := 1; x < w; x++ {
			buf.SetSkip(area.X+x, area.Y+y, true)
		}
	}
	return nil
}

// buildKittyPlaceholderRow builds the per-row escape that carries one
// Unicode placeholder pair (row diacritic, column diacritic) for every
// column of the row, bracketed by the id-carrying SGR foreground color
// and a reset.
func buildKittyPlaceholderRow(id uint32, y, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\x1b[38;5;%dm", id)
	rowDia := kittyDiacritic(y)
	for x := 0; x < width; x++ {
		b.WriteRune('\U0010EEEE')
		b.WriteRune(rowDia)
		b.WriteRune(kittyDiacritic(x))
	}
	b.WriteString("\x1b[0m")
	return b.String()
}

// kittyDiacritic looks up the row/column diacritic for index i, clamping
// out-of-range indices to entry 0 per §4.6.
func kittyDiacritic(i int) rune {
	if i < 0 || i >= len(kittyDiacritics) {
		return kittyDiacritics[0]
	}
	return kittyDiacritics[i]
}
