package cli

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestPreviewInlineSequence(t *testing.T) {
	var buf bytes.Buffer
	getenv := envOf(map[string]string{"TERM_PROGRAM": "WezTerm", "TERM": "xterm-256color"})
	require.NoError(t, PreviewImage(&buf, getenv, makeGradient(2, 2)))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\x1b]1337;File=name=preview.png;inline=1;"))
	payload := out[strings.Index(out, ":")+1 : strings.Index(out, "\a")]
	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestPreviewKittyChunks(t *testing.T) {
	var buf bytes.Buffer
	getenv := envOf(map[string]string{"KITTY_WINDOW_ID": "1"})
	require.NoError(t, PreviewImage(&buf, getenv, makeNoise(128, 128)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b_Ga=T,f=100,t=d,q=2,"))
	assert.Contains(t, out, "m=1;")
	assert.Contains(t, out, "\x1b_Gm=0;")
}

func TestPreviewBackendOverride(t *testing.T) {
	getenv := envOf(map[string]string{"TERM_PROGRAM": "iTerm.app", "PREVIEW_BACKEND": "kitty"})
	assert.Equal(t, backendKitty, detectPreview(getenv))
	assert.True(t, PreviewSupported(getenv))
}

func TestPreviewUnsupported(t *testing.T) {
	getenv := envOf(map[string]string{"TERM": "xterm"})
	assert.False(t, PreviewSupported(getenv))
	err := PreviewImage(&bytes.Buffer{}, getenv, makeGradient(2, 2))
	assert.ErrorIs(t, err, ErrNoPreview)
}

func TestComputePreviewSize(t *testing.T) {
	assert.Equal(t, PreviewSize{Cols: 6, Rows: 3, PixelWidth: 48, PixelHeight: 48}, computePreviewSize(16, 16))
	assert.Equal(t, PreviewSize{Cols: 80, Rows: 40, PixelWidth: 640, PixelHeight: 640}, computePreviewSize(1600, 1600))
}

// makeNoise returns an image that compresses poorly so the kitty payload
// spans several chunks.
func makeNoise(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	x := uint32(2463534242)
	for i := range img.Pix {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		img.Pix[i] = uint8(x)
	}
	return img
}
