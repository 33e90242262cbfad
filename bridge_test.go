package termgfx

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeStepTransfersOwnershipOnResize(t *testing.T) {
	font := FontSize{CellWidth: 10, CellHeight: 10}
	source := solidSource(100, 100, color.RGBA{R: 200, A: 255}, font)
	factory := &Factory{Kind: Halfblocks, Font: font}
	sp := factory.NewStateful(source, Fit)

	bridge := NewBridge(sp)
	jobs := make(chan BridgeJob, 1)
	buf := newFakeCellBuffer()

	err := bridge.Step(Rect{Width: 8, Height: 10}, buf, jobs)
	require.NoError(t, err)
	assert.False(t, bridge.Owned())
	assert.Empty(t, buf.glyph)

	select {
	case job := <-jobs:
		assert.Equal(t, Rect{Width: 8, Height: 8}, job.Area)
		assert.Same(t, sp, job.Protocol)
		assert.Equal(t, Fit, job.Policy)
		assert.Equal(t, source.Background, job.Background)
	default:
		t.Fatal("expected a job on the channel")
	}
}

func TestBridgeStepRendersWhenNoResizeNeeded(t *testing.T) {
	font := FontSize{CellWidth: 8, CellHeight: 16}
	source := solidSource(16, 16, color.RGBA{B: 255, A: 255}, font)
	factory := &Factory{Kind: Halfblocks, Font: font}
	sp := factory.NewStateful(source, Fit)

	area := Rect{Width: 2, Height: 1}
	require.NoError(t, sp.ResizeEncode(Fit, color.RGBA{}, area))

	bridge := NewBridge(sp)
	jobs := make(chan BridgeJob, 1)
	buf := newFakeCellBuffer()

	err := bridge.Step(area, buf, jobs)
	require.NoError(t, err)
	assert.True(t, bridge.Owned())
	assert.NotEmpty(t, buf.glyph)

	select {
	case <-jobs:
		t.Fatal("did not expect a job when no resize is needed")
	default:
	}
}

func TestBridgeStepRendersNothingWhileWorkerOwnsIt(t *testing.T) {
	bridge := &Bridge{}
	jobs := make(chan BridgeJob, 1)
	buf := newFakeCellBuffer()

	err := bridge.Step(Rect{Width: 2, Height: 2}, buf, jobs)
	require.NoError(t, err)
	assert.Empty(t, buf.glyph)
	assert.Empty(t, buf.raw)

	select {
	case <-jobs:
		t.Fatal("did not expect a job while the bridge holds nothing")
	default:
	}
}

func TestBridgeWorkerRoundTrip(t *testing.T) {
	font := FontSize{CellWidth: 10, CellHeight: 10}
	source := solidSource(100, 100, color.RGBA{G: 200, A: 255}, font)
	factory := &Factory{Kind: Halfblocks, Font: font}
	sp := factory.NewStateful(source, Fit)

	jobs := make(chan BridgeJob, 1)
	results := make(chan *StatefulProtocol, 1)
	stop := make(chan struct{})
	go RunBridgeWorker(jobs, results, stop)
	defer close(stop)

	jobs <- BridgeJob{Protocol: sp, Policy: Fit, Background: color.RGBA{}, Area: Rect{Width: 8, Height: 8}}
	returned := <-results

	assert.Same(t, sp, returned)
	assert.NoError(t, returned.LastError())
	assert.Equal(t, Rect{Width: 8, Height: 8}, returned.currentArea())

	bridge := &Bridge{}
	bridge.SetProtocol(returned)
	assert.True(t, bridge.Owned())
}
