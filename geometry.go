package termgfx

import "math"

// FontSize is the pixel dimensions of a single terminal cell, as learned
// from the capability handshake or a window-size ioctl fallback.
type FontSize struct {
	CellWidth  uint16
	CellHeight uint16
}

// Valid reports whether both dimensions were actually detected.
func (f FontSize) Valid() bool {
	return f.CellWidth > 0 && f.CellHeight > 0
}

// Rect is a rectangular region of character cells. A zero Width or Height
// means "no area" and callers must short-circuit rendering.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Equal reports whether two rects describe the same region.
func (r Rect) Equal(o Rect) bool {
	return r.X == o.X && r.Y == o.Y && r.Width == o.Width && r.Height == o.Height
}

// ResizePolicy selects how a source image's natural cell footprint is
// reconciled against the area available to draw into.
type ResizePolicy int

const (
	// Fit scales the image proportionally so both dimensions fit the
	// available area, preserving aspect ratio.
	Fit ResizePolicy = iota
	// Crop takes a top-left crop of the available area with no rescaling.
	Crop
)

// roundHalfToEven rounds f to the nearest integer, breaking ties toward
// the even neighbor, matching the tie-break rule float-to-int conversions
// use throughout the resize math.
func roundHalfToEven(f float64) int {
	return int(math.RoundToEven(f))
}

// clampAtLeastOne clamps n to a minimum of 1; used whenever the source
// image is non-empty so a dimension never collapses to zero.
func clampAtLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// CellSizeForPixels rounds a pixel dimension up to whole cells given a
// font size: ceil(w_px/font.w), ceil(h_px/font.h).
func CellSizeForPixels(widthPx, heightPx int, font FontSize) Rect {
	w := ceilDiv(widthPx, int(font.CellWidth))
	h := ceilDiv(heightPx, int(font.CellHeight))
	return Rect{Width: w, Height: h}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// NeedsResize returns the new target rect the active policy computes for
// a requested area, or (Rect{}, false) when the current encoded area
// already satisfies the request and force is false.
func NeedsResize(policy ResizePolicy, desired Rect, currentArea Rect, requestedArea Rect, force bool) (Rect, bool) {
	switch policy {
	case Crop:
		return needsResizeCrop(desired, currentArea, requestedArea, force)
	default:
		return needsResizeFit(desired, currentArea, requestedArea, force)
	}
}

func fitsIn(r, area Rect) bool {
	return r.Width <= area.Width && r.Height <= area.Height
}

func needsResizeFit(desired, current, area Rect, force bool) (Rect, bool) {
	if !force && fitsIn(desired, area) && desired.Equal(current) {
		return Rect{}, false
	}

	target := Rect{Width: desired.Width, Height: desired.Height}
	switch {
	case target.Width > area.Width && area.Width > 0:
		ratio := float64(area.Width) / float64(target.Width)
		target.Width = area.Width
		target.Height = clampAtLeastOne(roundHalfToEven(float64(target.Height) * ratio))
	case target.Height > area.Height && area.Height > 0:
		ratio := float64(area.Height) / float64(target.Height)
		target.Height = area.Height
		target.Width = clampAtLeastOne(roundHalfToEven(float64(target.Width) * ratio))
	}
	if !force && target.Equal(current) {
		return Rect{}, false
	}
	return target, true
}

func needsResizeCrop(desired, current, area Rect, force bool) (Rect, bool) {
	if !force && fitsIn(desired, area) && desired.Equal(current) {
		return Rect{}, false
	}
	target := Rect{
		Width:  minInt(desired.Width, area.Width),
		Height: minInt(desired.Height, area.Height),
	}
	if !force && target.Equal(current) {
		return Rect{}, false
	}
	return target, true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
