package termgfx

import "image/color"

// Factory holds the capabilities a probe observed — protocol kind, font
// size, tmux status — and mints StatefulProtocol values against them.
// With NextKittyID nil (the default) every factory draws Kitty ids from
// the package-wide counter; setting NextKittyID gives a factory its own
// id source. See DESIGN.md's note on the open question of per-terminal
// scoping.
type Factory struct {
	Kind                ProtocolKind
	Font                FontSize
	IsTmux              bool
	UseMosaicHalfblocks bool
	NextKittyID         func() uint32
}

// NewFactory builds a Factory from a completed capability probe.
func NewFactory(result ProbeResult) *Factory {
	return &Factory{Kind: result.Protocol, Font: result.Font, IsTmux: result.IsTmux}
}

// NewStateful constructs a StatefulProtocol bound to this factory's
// protocol kind and capabilities, ready to be resized and encoded
// on demand. Its initial padding background is the source's own
// background, set at ImageSource construction.
func (f *Factory) NewStateful(source *ImageSource, policy ResizePolicy) *StatefulProtocol {
	return &StatefulProtocol{
		factory:    f,
		source:     source,
		policy:     policy,
		background: source.Background,
	}
}

// NewFixed encodes source once at the given area and returns only the
// fixed Protocol value, for callers that never need to resize.
func (f *Factory) NewFixed(source *ImageSource, area Rect) (Protocol, error) {
	return f.encode(source, area)
}

func (f *Factory) encode(source *ImageSource, area Rect) (Protocol, error) {
	switch f.Kind {
	case Sixel:
		return EncodeSixel(source.Image, area, f.Font, f.IsTmux)
	case Kitty:
		return EncodeKitty(source.Image, area, f.Font, f.NextKittyID, f.IsTmux)
	case ITerm2:
		return EncodeITerm2(source.Image, area, f.Font, f.IsTmux)
	default:
		return EncodeHalfblocks(source.Image, area, f.UseMosaicHalfblocks)
	}
}

// StatefulProtocol tracks an ImageSource alongside its last-encoded rect,
// the policy and padding background that encode used, and the source
// hash at the time of that encode, so repeated render calls can tell
// whether a resize/re-encode is actually needed. It is single-owner:
// callers must not call its methods from more than one goroutine at a
// time without external synchronization (see Bridge for the off-thread
// handoff pattern).
type StatefulProtocol struct {
	factory     *Factory
	source      *ImageSource
	policy      ResizePolicy
	background  color.RGBA
	encodedHash uint64
	variant     Protocol
	lastErr     error
}

// currentArea is the rect of the currently encoded variant, or the zero
// Rect if nothing has been encoded yet.
func (s *StatefulProtocol) currentArea() Rect {
	if s.variant == nil {
		return Rect{}
	}
	return s.variant.Area()
}

// NeedsResize reports the new target rect the active policy computes
// for area, or (Rect{}, false) when the cached encode already satisfies
// the request and the source hasn't changed since.
func (s *StatefulProtocol) NeedsResize(area Rect) (Rect, bool) {
	force := s.source.Hash != s.encodedHash
	return NeedsResize(s.policy, s.source.Desired, s.currentArea(), area, force)
}

// ResizeEncode resizes the source per policy and re-encodes through the
// factory's protocol kind, per §4.9's resize_encode(policy, background,
// area): policy and background replace the values bound at construction
// (or at the last call) so a caller can change either mid-session.
// Encoding errors are captured in LastError and do not clear the
// previous successful variant — it remains renderable. Render pads
// whatever part of the draw area the encoded variant doesn't cover with
// background.
func (s *StatefulProtocol) ResizeEncode(policy ResizePolicy, background color.RGBA, area Rect) error {
	if area.Empty() {
		return nil
	}
	variant, err := s.factory.encode(s.source, area)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.policy = policy
	s.background = background
	s.variant = variant
	s.encodedHash = s.source.Hash
	s.lastErr = nil
	return nil
}

// Render delegates to the current variant, then pads any part of area
// the variant doesn't cover with the last ResizeEncode's background. A
// StatefulProtocol that has never been encoded renders nothing.
func (s *StatefulProtocol) Render(area Rect, buf CellBuffer) error {
	if s.variant == nil {
		return nil
	}
	if err := s.variant.Render(area, buf); err != nil {
		return err
	}
	padBackground(buf, area, s.variant.Area(), s.background)
	return nil
}

// ResizeEncodeRender is the blocking convenience path: if NeedsResize
// reports a change, resize and encode (against the currently bound
// policy and background) before rendering.
func (s *StatefulProtocol) ResizeEncodeRender(area Rect, buf CellBuffer) error {
	if rect, changed := s.NeedsResize(area); changed {
		if err := s.ResizeEncode(s.policy, s.background, rect); err != nil {
			return err
		}
	}
	return s.Render(area, buf)
}

// padBackground fills every cell of drawArea not covered by encodedArea
// with background, so a Fit-policy encode smaller than the available
// area doesn't leave stale content in the gap.
func padBackground(buf CellBuffer, drawArea, encodedArea Rect, background color.RGBA) {
	if drawArea.Empty() {
		return
	}
	fg := packRGBA(background)
	for y := 0; y < drawArea.Height; y++ {
		for x := 0; x < drawArea.Width; x++ {
			if x < encodedArea.Width && y < encodedArea.Height {
				continue
			}
			buf.SetContent(drawArea.X+x, drawArea.Y+y, fg, fg, true, ' ')
		}
	}
}

// LastError returns the error from the most recent ResizeEncode call, or
// nil if it succeeded or has never run.
func (s *StatefulProtocol) LastError() error { return s.lastErr }

// Kind reports the protocol kind this stateful value encodes to.
func (s *StatefulProtocol) Kind() ProtocolKind { return s.factory.Kind }
