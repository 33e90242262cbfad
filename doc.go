/*
Package termgfx renders raster images into character-cell terminals,
choosing among four wire protocols depending on what the connected
terminal actually supports: Kitty's graphics protocol, iTerm2's inline
images, DEC Sixel, and a Unicode halfblocks fallback that works
everywhere.

A typical caller probes the terminal once:

	result, err := termgfx.Probe()
	if err != nil {
	    log.Fatal(err)
	}

builds an ImageSource and a Factory from the probe result:

	source := termgfx.NewImageSource(img, result.Font, color.RGBA{})
	factory := termgfx.NewFactory(result)

and either encodes once for a fixed layout:

	proto, err := factory.NewFixed(source, area)

or drives a StatefulProtocol that re-encodes only when the source or the
available area actually changes:

	sp := factory.NewStateful(source, termgfx.Fit)
	if rect, changed := sp.NeedsResize(area); changed {
	    sp.ResizeEncode(termgfx.Fit, background, rect)
	}
	sp.Render(area, buf)

Rendering never touches a screen directly; it writes into a CellBuffer
supplied by the host application, so termgfx has no dependency on any
particular cell-grid library. A Bridge moves a StatefulProtocol between
a UI goroutine and a background worker so resize/encode work never
blocks a render loop, and StatefulImageWidget wires that bridge into a
bubbletea tea.Model for the cmd/termgfx-demo CLI.
*/
package termgfx
