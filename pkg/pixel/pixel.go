// Package pixel holds the grid model shared by every operator: a row-major
// rectangle of four-channel integer pixels.
package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGrid is returned when a grid would have zero width or height.
	ErrEmptyGrid = errors.New("grid must be at least 1x1")
	// ErrBufferSize is returned when a raw buffer does not hold width*height*4 bytes.
	ErrBufferSize = errors.New("buffer length does not match dimensions")
)

// Channel selects one sample of a Pixel.
type Channel int

const (
	R Channel = iota
	G
	B
	A
)

// RGB lists the color channels operators transform; alpha is passed through.
var RGB = [3]Channel{R, G, B}

func (c Channel) String() string {
	switch c {
	case R:
		return "R"
	case G:
		return "G"
	case B:
		return "B"
	case A:
		return "A"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Pixel is one sample point. Channels are wider than a byte so raw operator
// responses (Laplacian, subtraction) can hold values outside [0,255].
type Pixel struct {
	R, G, B, A int32
}

// Get returns the value of channel c.
func (p Pixel) Get(c Channel) int32 {
	switch c {
	case R:
		return p.R
	case G:
		return p.G
	case B:
		return p.B
	default:
		return p.A
	}
}

// With returns a copy of p with channel c set to v.
func (p Pixel) With(c Channel, v int32) Pixel {
	switch c {
	case R:
		p.R = v
	case G:
		p.G = v
	case B:
		p.B = v
	default:
		p.A = v
	}
	return p
}

// Clamped returns p with every channel clamped to [0,255].
func (p Pixel) Clamped() Pixel {
	return Pixel{ClampSample(p.R), ClampSample(p.G), ClampSample(p.B), ClampSample(p.A)}
}

// IsGray reports whether R, G and B are equal.
func (p Pixel) IsGray() bool {
	return p.R == p.G && p.G == p.B
}

// ClampSample clamps v to [0,255].
func ClampSample(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ClampFloat rounds v to the nearest integer and clamps it to [0,255].
func ClampFloat(v float64) int32 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return int32(v + 0.5)
}

// Grid is a rectangular image. Pix holds Height rows of Width pixels.
// A grid owned by a history record must not be written to.
type Grid struct {
	Pix    []Pixel
	Width  int
	Height int
}

// New allocates a zeroed width x height grid.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrEmptyGrid, width, height)
	}
	return &Grid{Pix: make([]Pixel, width*height), Width: width, Height: height}, nil
}

// NewLike allocates a zeroed grid with the same dimensions as g.
func NewLike(g *Grid) *Grid {
	return &Grid{Pix: make([]Pixel, len(g.Pix)), Width: g.Width, Height: g.Height}
}

// Solid returns a grid filled with p.
func Solid(width, height int, p Pixel) (*Grid, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for i := range g.Pix {
		g.Pix[i] = p
	}
	return g, nil
}

// FromBytes builds a grid from an interleaved R,G,B,A byte stream and
// reports whether every pixel is gray.
func FromBytes(data []byte, width, height int) (*Grid, bool, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, false, err
	}
	if len(data) != width*height*4 {
		return nil, false, fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferSize, len(data), width, height)
	}
	gray := true
	for i := range g.Pix {
		j := i * 4
		p := Pixel{int32(data[j]), int32(data[j+1]), int32(data[j+2]), int32(data[j+3])}
		if gray && !p.IsGray() {
			gray = false
		}
		g.Pix[i] = p
	}
	return g, gray, nil
}

// Bytes serializes g to an interleaved R,G,B,A stream in row-major order.
// Samples outside [0,255] are clamped.
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.Pix)*4)
	for i, p := range g.Pix {
		j := i * 4
		out[j+0] = uint8(ClampSample(p.R))
		out[j+1] = uint8(ClampSample(p.G))
		out[j+2] = uint8(ClampSample(p.B))
		out[j+3] = uint8(ClampSample(p.A))
	}
	return out
}

// Offset returns the index into Pix of the pixel at (x, y).
func (g *Grid) Offset(x, y int) int {
	return y*g.Width + x
}

// At returns the pixel at (x, y). It panics if the point is outside the grid.
func (g *Grid) At(x, y int) Pixel {
	return g.Pix[y*g.Width+x]
}

// In reports whether (x, y) lies inside the grid.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// SameSize reports whether g and o have identical dimensions.
func (g *Grid) SameSize(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	out := NewLike(g)
	copy(out.Pix, g.Pix)
	return out
}

// Equal reports whether g and o have the same size and identical pixels.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if !g.SameSize(o) {
		return false
	}
	for i := range g.Pix {
		if g.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// IsGrayscale reports whether R == G == B for every pixel.
func (g *Grid) IsGrayscale() bool {
	for _, p := range g.Pix {
		if !p.IsGray() {
			return false
		}
	}
	return true
}
