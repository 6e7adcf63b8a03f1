package pixel

import (
	"errors"
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA converts any image.Image to *image.NRGBA (non-premultiplied RGBA)
// anchored at the origin.
func ToNRGBA(src image.Image) *image.NRGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		// copy rows to avoid aliasing the caller's buffer
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := out.PixOffset(0, y)
			copy(out.Pix[di:di+b.Dx()*4], n.Pix[si:si+b.Dx()*4])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	return out
}

// FromImage converts a decoded image into a grid and reports whether it is
// grayscale.
func FromImage(src image.Image) (*Grid, bool, error) {
	if src == nil {
		return nil, false, errors.New("source image is nil")
	}
	n := ToNRGBA(src)
	return FromBytes(n.Pix, n.Rect.Dx(), n.Rect.Dy())
}

// NRGBA renders g as an *image.NRGBA, clamping samples to [0,255].
func (g *Grid) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	copy(out.Pix, g.Bytes())
	return out
}
