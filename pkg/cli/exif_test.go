package cli

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exifBlock builds a minimal TIFF block whose IFD0 holds only the
// orientation tag.
func exifBlock(order binary.ByteOrder, orientation uint16) []byte {
	var b bytes.Buffer
	if order == binary.LittleEndian {
		b.WriteString("II")
	} else {
		b.WriteString("MM")
	}
	_ = binary.Write(&b, order, uint16(0x2A))
	_ = binary.Write(&b, order, uint32(8))
	_ = binary.Write(&b, order, uint16(1))
	_ = binary.Write(&b, order, uint16(tagOrientation))
	_ = binary.Write(&b, order, uint16(3))
	_ = binary.Write(&b, order, uint32(1))
	_ = binary.Write(&b, order, orientation)
	_ = binary.Write(&b, order, uint16(0))
	_ = binary.Write(&b, order, uint32(0))
	return b.Bytes()
}

// jpegWithOrientation encodes img and splices an APP1 Exif segment after
// the SOI marker.
func jpegWithOrientation(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	var enc bytes.Buffer
	require.NoError(t, jpeg.Encode(&enc, img, &jpeg.Options{Quality: 95}))
	raw := enc.Bytes()

	payload := append([]byte("Exif\x00\x00"), exifBlock(binary.LittleEndian, orientation)...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := append([]byte{}, raw[:2]...)
	out = append(out, seg...)
	return append(out, raw[2:]...)
}

func halfRedHalfBlue(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestJPEGOrientation(t *testing.T) {
	data := jpegWithOrientation(t, halfRedHalfBlue(16, 8), 6)
	o, err := jpegOrientation(data)
	require.NoError(t, err)
	assert.Equal(t, 6, o)
}

func TestTIFFOrientationBigEndian(t *testing.T) {
	o, err := tiffOrientation(exifBlock(binary.BigEndian, 8))
	require.NoError(t, err)
	assert.Equal(t, 8, o)
}

func TestJPEGOrientationMissing(t *testing.T) {
	var enc bytes.Buffer
	require.NoError(t, jpeg.Encode(&enc, halfRedHalfBlue(8, 8), nil))
	_, err := jpegOrientation(enc.Bytes())
	assert.ErrorIs(t, err, errNoOrientation)

	_, err = jpegOrientation([]byte("not a jpeg"))
	assert.Error(t, err)
}

func TestLoadImageAppliesOrientation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotated.jpg")
	require.NoError(t, os.WriteFile(path, jpegWithOrientation(t, halfRedHalfBlue(16, 8), 6), 0o644))

	img, format, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	require.Equal(t, image.Rect(0, 0, 8, 16), img.Bounds())

	// rotated clockwise: the left (red) half of the source is now on top
	r, _, b, _ := img.At(4, 2).RGBA()
	assert.Greater(t, r>>8, uint32(150))
	assert.Less(t, b>>8, uint32(100))
	r, _, b, _ = img.At(4, 13).RGBA()
	assert.Less(t, r>>8, uint32(100))
	assert.Greater(t, b>>8, uint32(150))
}

func TestAutoOrientMappings(t *testing.T) {
	// 3x2 source with a distinct red value per pixel: r = 10*y + x
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(10*y + x), A: 255})
		}
	}
	red := func(img *image.NRGBA, x, y int) uint8 { return img.NRGBAAt(x, y).R }

	tests := []struct {
		o          int
		w, h       int
		x, y       int
		wantSource uint8
	}{
		{2, 3, 2, 0, 0, 2},
		{3, 3, 2, 0, 0, 12},
		{4, 3, 2, 0, 0, 10},
		{5, 2, 3, 1, 0, 10},
		{6, 2, 3, 0, 0, 10},
		{6, 2, 3, 1, 0, 0},
		{7, 2, 3, 0, 0, 12},
		{8, 2, 3, 0, 0, 2},
		{8, 2, 3, 1, 2, 10},
	}
	for _, tc := range tests {
		got := autoOrient(src, tc.o)
		require.Equal(t, image.Rect(0, 0, tc.w, tc.h), got.Bounds(), "orientation %d", tc.o)
		assert.Equal(t, tc.wantSource, red(got, tc.x, tc.y), "orientation %d at (%d,%d)", tc.o, tc.x, tc.y)
	}
}
