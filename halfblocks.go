package termgfx

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/mosaic"
	"github.com/nfnt/resize"
)

const halfblockGlyph = '▀'

// halfblocksCell is one encoded grid position: a foreground/background
// color pair and the glyph to paint them with.
type halfblocksCell struct {
	Upper, Lower color.RGBA
	Glyph        rune
}

// HalfblocksProtocol is the fixed, encoded Halfblocks variant: a grid of
// {upper, lower, glyph} triples sized to Area.
type HalfblocksProtocol struct {
	cells []halfblocksCell
	area  Rect
}

func (h *HalfblocksProtocol) Kind() ProtocolKind { return Halfblocks }
func (h *HalfblocksProtocol) Area() Rect         { return h.area }

// Render paints every cell of the encoded grid into buf. Unlike the other
// three encoders, Halfblocks writes a glyph into every covered cell
// rather than one cell plus skip flags — there is nothing to skip, since
// every cell carries its own two-pixel-tall slice of the image. This is
// the deliberate exception to the skip discipline called out in the
// spec's design notes.
func (h *HalfblocksProtocol) Render(area Rect, buf CellBuffer) error {
	if area.Empty() || h.area.Empty() {
		return nil
	}
	w := minInt(h.area.Width, area.Width)
	ht := minInt(h.area.Height, area.Height)
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			cell := h.cells[y*h.area.Width+x]
			fg := packRGBA(cell.Upper)
			bg := packRGBA(cell.Lower)
			buf.SetContent(area.X+x, area.Y+y, fg, bg, true, cell.Glyph)
		}
	}
	return nil
}

func packRGBA(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// EncodeHalfblocks resizes img to the target cell rect and slices it into
// vertically stacked pixel pairs per the primitive path in §4.4. When
// useMosaic is true it first attempts the glyph-variant path via
// charmbracelet/x/mosaic and only falls back to the primitive path if
// that output can't be parsed cell-for-cell.
func EncodeHalfblocks(img image.Image, area Rect, useMosaic bool) (*HalfblocksProtocol, error) {
	if area.Empty() {
		return &HalfblocksProtocol{area: area}, nil
	}

	if useMosaic {
		if proto, ok := encodeHalfblocksMosaic(img, area); ok {
			return proto, nil
		}
	}
	return encodeHalfblocksPrimitive(img, area)
}

func encodeHalfblocksPrimitive(img image.Image, area Rect) (*HalfblocksProtocol, error) {
	targetW := uint(area.Width)
	targetH := uint(area.Height * 2)

	resized := resize.Resize(targetW, targetH, img, resize.Bilinear)
	b := resized.Bounds()

	cells := make([]halfblocksCell, area.Width*area.Height)
	for y := 0; y < area.Height; y++ {
		upperY := b.Min.Y + y*2
		lowerY := upperY + 1
		for x := 0; x < area.Width; x++ {
			px := b.Min.X + x
			cells[y*area.Width+x] = halfblocksCell{
				Upper: toRGBA(resized.At(px, upperY)),
				Lower: toRGBA(resized.At(px, clampY(lowerY, b))),
				Glyph: halfblockGlyph,
			}
		}
	}
	return &HalfblocksProtocol{cells: cells, area: area}, nil
}

func clampY(y int, b image.Rectangle) int {
	if y >= b.Max.Y {
		return b.Max.Y - 1
	}
	return y
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// encodeHalfblocksMosaic asks mosaic to choose glyphs and colors for the
// target grid, then parses its ANSI output back into a per-cell grid.
// It returns ok=false whenever the output doesn't parse as exactly
// area.Width by area.Height SGR-prefixed glyph cells, so the caller can
// silently fall through to the primitive path.
func encodeHalfblocksMosaic(img image.Image, area Rect) (*HalfblocksProtocol, bool) {
	output := mosaic.New().Width(area.Width).Height(area.Height).Render(img)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != area.Height {
		return nil, false
	}

	cells := make([]halfblocksCell, area.Width*area.Height)
	for y, line := range lines {
		rowCells, ok := parseMosaicLine(line, area.Width)
		if !ok {
			return nil, false
		}
		copy(cells[y*area.Width:(y+1)*area.Width], rowCells)
	}
	return &HalfblocksProtocol{cells: cells, area: area}, true
}

// parseMosaicLine scans a single line of mosaic's ANSI output. Each cell
// must be preceded by a 38;2;r;g;b (foreground) SGR and a 48;2;r;g;b
// (background) SGR, in either order, and be exactly one glyph rune. A
// glyph without both colors since the previous glyph (a missing color,
// or the second rune of a multi-rune glyph), an unterminated escape, a
// non-numeric color, or a cell count other than width rejects the whole
// line so the caller falls back to the primitive path. Reset SGRs and
// SGRs other than 38;2/48;2 are skipped.
func parseMosaicLine(line string, width int) ([]halfblocksCell, bool) {
	cells := make([]halfblocksCell, 0, width)
	var fg, bg color.RGBA
	haveFg, haveBg := false, false
	runes := []rune(line)

	for i := 0; i < len(runes); {
		if runes[i] != '\x1b' {
			if !haveFg || !haveBg {
				return nil, false
			}
			cells = append(cells, halfblocksCell{Upper: fg, Lower: bg, Glyph: runes[i]})
			haveFg, haveBg = false, false
			i++
			continue
		}

		end := strings.IndexRune(string(runes[i:]), 'm')
		if end < 0 {
			return nil, false
		}
		seq := string(runes[i+2 : i+end]) // skip "\x1b["
		i += end + 1

		if seq == "" || seq == "0" {
			continue
		}
		parts := strings.Split(seq, ";")
		if len(parts) < 5 || parts[1] != "2" {
			continue
		}
		r, errR := strconv.Atoi(parts[2])
		g, errG := strconv.Atoi(parts[3])
		b, errB := strconv.Atoi(parts[4])
		if errR != nil || errG != nil || errB != nil {
			return nil, false
		}
		c := color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
		switch parts[0] {
		case "38":
			fg, haveFg = c, true
		case "48":
			bg, haveBg = c, true
		}
	}

	if len(cells) != width {
		return nil, false
	}
	return cells, true
}
