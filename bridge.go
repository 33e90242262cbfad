package termgfx

import (
	"image/color"
	"sync"
)

// BridgeJob is the quadruple sent down a Bridge's worker channel: the
// protocol to resize+encode, the policy and area to resize+encode it
// against, and the background field, which carries the padding color
// used for any region the resize leaves empty.
type BridgeJob struct {
	Protocol   *StatefulProtocol
	Policy     ResizePolicy
	Background color.RGBA
	Area       Rect
}

// Bridge implements the off-thread ownership transfer in §4.10: the
// StatefulProtocol moves exclusively between the UI goroutine and a
// worker, never shared mutably. While a worker holds it, inner is nil
// and the widget step renders nothing for that frame.
type Bridge struct {
	mu    sync.Mutex
	inner *StatefulProtocol
}

// NewBridge wraps a StatefulProtocol the UI currently owns.
func NewBridge(sp *StatefulProtocol) *Bridge {
	return &Bridge{inner: sp}
}

// Step is the widget's per-frame entry point. If the UI currently owns
// the protocol and it needs a resize, ownership transfers down jobs and
// nothing is rendered this frame. If it's owned and no resize is
// needed, it renders immediately. If the worker currently owns it,
// nothing is rendered this frame either.
func (b *Bridge) Step(area Rect, buf CellBuffer, jobs chan<- BridgeJob) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inner == nil {
		return nil
	}

	if rect, changed := b.inner.NeedsResize(area); changed {
		job := BridgeJob{
			Protocol:   b.inner,
			Policy:     b.inner.policy,
			Background: b.inner.background,
			Area:       rect,
		}
		b.inner = nil
		jobs <- job
		return nil
	}

	return b.inner.Render(area, buf)
}

// SetProtocol re-installs a StatefulProtocol the worker has finished
// with, giving ownership back to the UI.
func (b *Bridge) SetProtocol(sp *StatefulProtocol) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inner = sp
}

// Owned reports whether the UI currently holds the protocol (as opposed
// to a worker holding it mid-encode).
func (b *Bridge) Owned() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inner != nil
}

// RunBridgeWorker is the worker-side loop: it receives jobs, resizes and
// encodes, and sends the (still-owned-by-nobody-else) protocol back on
// results. The caller is expected to launch this in its own goroutine,
// e.g. from a bubbletea tea.Cmd, and to call SetProtocol with whatever
// arrives on results.
func RunBridgeWorker(jobs <-chan BridgeJob, results chan<- *StatefulProtocol, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			job.Protocol.ResizeEncode(job.Policy, job.Background, job.Area)
			select {
			case results <- job.Protocol:
			case <-stop:
				return
			}
		}
	}
}
