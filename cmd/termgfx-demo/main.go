// Command termgfx-demo opens an image and renders it in the terminal,
// probing capabilities once at startup and letting the user cycle
// through the four protocols with Space.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cellgfx/termgfx"
)

func main() {
	img, err := loadImage()
	if err != nil {
		log.Fatalf("load image: %v", err)
	}

	result, err := termgfx.Probe()
	if err != nil {
		log.Fatalf("probe terminal: %v", err)
	}
	fmt.Fprintf(os.Stderr, "detected protocol: %s (font %dx%d, tmux=%v)\n",
		result.Protocol, result.Font.CellWidth, result.Font.CellHeight, result.IsTmux)

	source := termgfx.NewImageSource(img, result.Font, color.RGBA{})
	factory := termgfx.NewFactory(result)
	widget := termgfx.NewStatefulImageWidget(source, factory, termgfx.Fit)

	p := tea.NewProgram(widget, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("run program: %v", err)
	}
}

func loadImage() (image.Image, error) {
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		return img, err
	}
	return testPattern(), nil
}

func testPattern() image.Image {
	const size = 200
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := uint8((x * 255) / size)
			g := uint8((y * 255) / size)
			b := uint8(((x + y) * 255) / (2 * size))
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	draw.Draw(img, image.Rect(20, 20, 60, 60), &image.Uniform{C: color.RGBA{R: 255, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(140, 20, 180, 60), &image.Uniform{C: color.RGBA{G: 255, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(20, 140, 60, 180), &image.Uniform{C: color.RGBA{B: 255, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(140, 140, 180, 180), &image.Uniform{C: color.RGBA{R: 255, G: 255, B: 255, A: 255}}, image.Point{}, draw.Src)
	return img
}
