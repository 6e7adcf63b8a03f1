package cli

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func TestSaveLoadLosslessFormats(t *testing.T) {
	src := makeGradient(8, 4)
	for _, ext := range []string{".png", ".bmp", ".tif", ".tiff"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "img"+ext)
			require.NoError(t, SaveImage(path, src))
			img, _, err := LoadImage(path)
			require.NoError(t, err)
			require.Equal(t, src.Bounds(), img.Bounds())
			for y := 0; y < 4; y++ {
				for x := 0; x < 8; x++ {
					r, g, b, a := img.At(x, y).RGBA()
					want := src.NRGBAAt(x, y)
					assert.Equal(t, []uint32{uint32(want.R), uint32(want.G), uint32(want.B), 255},
						[]uint32{r >> 8, g >> 8, b >> 8, a >> 8}, "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestSaveLoadLossyFormats(t *testing.T) {
	src := makeGradient(8, 4)
	for _, tc := range []struct{ ext, format string }{{".jpg", "jpeg"}, {".gif", "gif"}} {
		path := filepath.Join(t.TempDir(), "img"+tc.ext)
		require.NoError(t, SaveImage(path, src))
		img, format, err := LoadImage(path)
		require.NoError(t, err)
		assert.Equal(t, tc.format, format)
		assert.Equal(t, src.Bounds(), img.Bounds())
	}
}

func TestSaveImageUnsupported(t *testing.T) {
	err := SaveImage(filepath.Join(t.TempDir(), "img.webp"), makeGradient(2, 2))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadImageErrors(t *testing.T) {
	_, _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
