package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"
)

// Terminal preview for the kitty graphics protocol and the iTerm2 inline
// image protocol (OSC 1337), which WezTerm, VSCode and others also accept.
// PREVIEW_BACKEND=kitty|inline overrides detection.

// ErrNoPreview is returned when the terminal supports neither protocol.
var ErrNoPreview = errors.New("terminal does not support inline images")

type previewBackend int

const (
	backendNone previewBackend = iota
	backendKitty
	backendInline
)

func isKitty(getenv func(string) string) bool {
	if getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineImageCapable(getenv func(string) string) bool {
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby", "Bobcat":
		return true
	}
	if getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "tabby")
}

func detectPreview(getenv func(string) string) previewBackend {
	switch strings.ToLower(getenv("PREVIEW_BACKEND")) {
	case "kitty":
		return backendKitty
	case "inline", "iterm", "wezterm":
		return backendInline
	}
	if isInlineImageCapable(getenv) {
		return backendInline
	}
	if isKitty(getenv) {
		return backendKitty
	}
	return backendNone
}

// PreviewSupported reports whether PreviewImage can draw in this terminal.
func PreviewSupported(getenv func(string) string) bool {
	return detectPreview(getenv) != backendNone
}

// PreviewSize is the placement of a preview in character cells.
type PreviewSize struct {
	Cols, Rows              int
	PixelWidth, PixelHeight int
}

// computePreviewSize fits a w x h image into at most 80x40 cells of
// 8x16 pixels, never scaling up.
func computePreviewSize(w, h int) PreviewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

// PreviewImage PNG-encodes img and writes it to w using the protocol the
// terminal supports.
func PreviewImage(w io.Writer, getenv func(string) string, img image.Image) error {
	if img == nil {
		return errors.New("nil image")
	}
	backend := detectPreview(getenv)
	if backend == backendNone {
		return ErrNoPreview
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	size := computePreviewSize(img.Bounds().Dx(), img.Bounds().Dy())
	if backend == backendKitty {
		return sendKittyImage(w, buf.Bytes(), size)
	}
	return sendInlineImage(w, buf.Bytes(), size)
}

// sendKittyImage transmits PNG data in base64 chunks of at most 4096
// bytes. Only the first chunk carries the control keys.
func sendKittyImage(w io.Writer, data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := 1
		if end == len(enc) {
			more = 0
		}
		var err error
		if pos == 0 {
			_, err = fmt.Fprintf(w, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			_, err = fmt.Fprintf(w, "\x1b_Gm=%d;%s\x1b\\", more, enc[pos:end])
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func sendInlineImage(w io.Writer, data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	_, err := fmt.Fprintf(w, "\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n",
		len(data), size.PixelWidth, size.PixelHeight, enc)
	return err
}
