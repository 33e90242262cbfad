package termgfx

// ProtocolKind tags which of the four encoders a Protocol value wraps.
// Kept as a small closed enum alongside the interface below rather than
// a type-switch-only design, so callers can serialize/compare the
// active choice (e.g. to cycle protocols) without a type assertion.
type ProtocolKind int

const (
	Halfblocks ProtocolKind = iota
	Sixel
	Kitty
	ITerm2
)

func (k ProtocolKind) String() string {
	switch k {
	case Halfblocks:
		return "halfblocks"
	case Sixel:
		return "sixel"
	case Kitty:
		return "kitty"
	case ITerm2:
		return "iterm2"
	default:
		return "unknown"
	}
}

// CycleProtocol returns the next protocol kind in the fixed cycle
// Halfblocks -> Sixel -> Kitty -> ITerm2 -> Halfblocks.
func CycleProtocol(k ProtocolKind) ProtocolKind {
	switch k {
	case Halfblocks:
		return Sixel
	case Sixel:
		return Kitty
	case Kitty:
		return ITerm2
	default:
		return Halfblocks
	}
}

// CellBuffer is the minimal shape of the host TUI's character-grid
// buffer that encoders render into. It is implemented by the embedding
// application (e.g. a charmbracelet/x/cellbuf-backed grid); the only one
// termgfx constructs itself is the small string grid StatefulImageWidget
// renders its View from — the cell-buffer library is an external
// collaborator.
type CellBuffer interface {
	// SetContent paints a single glyph with explicit colors, the shape
	// the Halfblocks encoder needs for every cell it touches.
	SetContent(x, y int, fg, bg uint32, hasColor bool, glyph rune)
	// SetRawContent places pre-built content (an escape sequence, a
	// run of Unicode placeholder codepoints) verbatim into one cell,
	// the shape Sixel, Kitty, and iTerm2 need for their single
	// transmit/placement cell.
	SetRawContent(x, y int, s string)
	// SetSkip marks a cell so the cell diff engine does not overwrite
	// it this frame.
	SetSkip(x, y int, skip bool)
}

// Protocol is the uniform two-operation contract every fixed, encoded
// protocol value implements: place its stored bytes into a cell buffer,
// and report the cell footprint those bytes currently occupy.
//
// In a language with sum types this would be one tagged variant with an
// exhaustive match; Go models the same closed-set dispatch with a small
// interface plus the Kind() tag above for serialization of the choice.
type Protocol interface {
	Kind() ProtocolKind
	Area() Rect
	Render(area Rect, buf CellBuffer) error
}
