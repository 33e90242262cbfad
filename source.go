package termgfx

import (
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
)

// ImageSource holds a decoded raster together with its natural cell
// footprint and an identity hash used by the stateful driver to decide
// whether a re-encode is necessary. It is effectively immutable after
// construction: the interior pixel bytes never change.
type ImageSource struct {
	Image      image.Image
	Desired    Rect
	Hash       uint64
	Background color.RGBA
}

// NewImageSource builds an ImageSource from a decoded raster and the
// font size in effect for the target terminal. If background is
// non-transparent the raster is pre-composited over a solid fill so the
// encoders never have to reason about transparency themselves.
func NewImageSource(img image.Image, font FontSize, background color.RGBA) *ImageSource {
	if background.A != 0 {
		img = compositeOverBackground(img, background)
	}

	b := img.Bounds()
	desired := CellSizeForPixels(b.Dx(), b.Dy(), font)

	return &ImageSource{
		Image:      img,
		Desired:    desired,
		Hash:       hashImage(img),
		Background: background,
	}
}

func compositeOverBackground(img image.Image, bg color.RGBA) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// hashImage computes a 64-bit identity hash of the image's raw pixel
// bytes, stable for the life of the source.
func hashImage(img image.Image) uint64 {
	h := fnv.New64a()
	b := img.Bounds()

	switch im := img.(type) {
	case *image.RGBA:
		h.Write(im.Pix)
	case *image.NRGBA:
		h.Write(im.Pix)
	default:
		buf := make([]byte, 4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				buf[0] = byte(r >> 8)
				buf[1] = byte(g >> 8)
				buf[2] = byte(bl >> 8)
				buf[3] = byte(a >> 8)
				h.Write(buf)
			}
		}
	}
	return h.Sum64()
}
