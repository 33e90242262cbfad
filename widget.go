package termgfx

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// stringCellBuffer is a minimal CellBuffer that renders straight to a flat
// grid of strings, good enough for a bubbletea View() and for any host
// that doesn't bring its own cell-buffer library. Production hosts are
// expected to implement CellBuffer against their own screen type instead;
// this one exists purely to make the package usable standalone.
type stringCellBuffer struct {
	width, height int
	glyph         [][]rune
	raw           [][]string
	skip          [][]bool
}

func newStringCellBuffer(width, height int) *stringCellBuffer {
	b := &stringCellBuffer{width: width, height: height}
	b.glyph = make([][]rune, height)
	b.raw = make([][]string, height)
	b.skip = make([][]bool, height)
	for y := 0; y < height; y++ {
		b.glyph[y] = make([]rune, width)
		b.raw[y] = make([]string, width)
		b.skip[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			b.glyph[y][x] = ' '
		}
	}
	return b
}

func (b *stringCellBuffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

func (b *stringCellBuffer) SetContent(x, y int, fg, bg uint32, hasColor bool, glyph rune) {
	if !b.inBounds(x, y) {
		return
	}
	if hasColor {
		b.raw[y][x] = fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
			fg>>16&0xff, fg>>8&0xff, fg&0xff, bg>>16&0xff, bg>>8&0xff, bg&0xff, glyph)
		return
	}
	b.glyph[y][x] = glyph
}

func (b *stringCellBuffer) SetRawContent(x, y int, s string) {
	if !b.inBounds(x, y) {
		return
	}
	b.raw[y][x] = s
}

func (b *stringCellBuffer) SetSkip(x, y int, skip bool) {
	if !b.inBounds(x, y) {
		return
	}
	b.skip[y][x] = skip
}

func (b *stringCellBuffer) String() string {
	var out strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.skip[y][x] {
				continue
			}
			if raw := b.raw[y][x]; raw != "" {
				out.WriteString(raw)
				continue
			}
			out.WriteRune(b.glyph[y][x])
		}
		if y < b.height-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// resizeDoneMsg carries the worker's finished protocol back through
// bubbletea's Cmd/Msg loop; jobs reach the worker on the widget's jobs
// channel, so the blocking resize+encode work in ResizeEncode never runs
// on the UI goroutine. resizeJobMsg is not sent anywhere.
type resizeJobMsg struct{ job BridgeJob }
type resizeDoneMsg struct{ protocol *StatefulProtocol }

// StatefulImageWidget is a tea.Model that renders one image through the
// active protocol, resizing off-thread via a Bridge, and lets the user
// cycle protocols interactively.
type StatefulImageWidget struct {
	factory *Factory
	source  *ImageSource
	policy  ResizePolicy
	bridge  *Bridge

	jobs    chan BridgeJob
	results chan *StatefulProtocol
	stop    chan struct{}

	area Rect
	buf  *stringCellBuffer
	err  error
}

// NewStatefulImageWidget builds a widget over source, starting at the
// factory's protocol kind, and launches its background resize worker.
func NewStatefulImageWidget(source *ImageSource, factory *Factory, policy ResizePolicy) *StatefulImageWidget {
	sp := factory.NewStateful(source, policy)
	w := &StatefulImageWidget{
		factory: factory,
		source:  source,
		policy:  policy,
		bridge:  NewBridge(sp),
		jobs:    make(chan BridgeJob, 1),
		results: make(chan *StatefulProtocol, 1),
		stop:    make(chan struct{}),
	}
	go RunBridgeWorker(w.jobs, w.results, w.stop)
	return w
}

func (w *StatefulImageWidget) Init() tea.Cmd {
	return w.waitForResult
}

func (w *StatefulImageWidget) waitForResult() tea.Msg {
	sp := <-w.results
	return resizeDoneMsg{protocol: sp}
}

// CycleProtocol switches the factory's protocol kind and forces the next
// Update to re-encode against it.
func (w *StatefulImageWidget) CycleProtocol() {
	w.factory.Kind = CycleProtocol(w.factory.Kind)
	sp := w.factory.NewStateful(w.source, w.policy)
	w.bridge.SetProtocol(sp)
}

func (w *StatefulImageWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		w.area = Rect{Width: m.Width, Height: m.Height}
		return w, w.step
	case tea.KeyMsg:
		switch m.String() {
		case "q", "esc", "ctrl+c":
			close(w.stop)
			return w, tea.Quit
		case " ":
			w.CycleProtocol()
			return w, w.step
		}
	case resizeDoneMsg:
		w.bridge.SetProtocol(m.protocol)
		return w, tea.Batch(w.step, w.waitForResult)
	}
	return w, nil
}

func (w *StatefulImageWidget) step() tea.Msg {
	if w.area.Empty() {
		return nil
	}
	buf := newStringCellBuffer(w.area.Width, w.area.Height)
	if err := w.bridge.Step(w.area, buf, w.jobs); err != nil {
		w.err = err
		return nil
	}
	w.buf = buf
	return nil
}

func (w *StatefulImageWidget) View() string {
	if w.err != nil {
		return fmt.Sprintf("error: %v", w.err)
	}
	if w.buf == nil {
		return "loading..."
	}
	return w.buf.String()
}
