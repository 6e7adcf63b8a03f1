package imgproc

import (
	"context"
	"fmt"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// MaskMode selects one of the 3x3 Laplacian masks.
type MaskMode int

const (
	Mask4 MaskMode = iota
	Mask8
	Mask4Reverse
	Mask8Reverse
)

var maskModeNames = map[MaskMode]string{
	Mask4:        "mask-4",
	Mask8:        "mask-8",
	Mask4Reverse: "mask-4-reverse",
	Mask8Reverse: "mask-8-reverse",
}

func (m MaskMode) String() string {
	if s, ok := maskModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mask(%d)", int(m))
}

// ParseMaskMode accepts "mask-4", "mask-8", "mask-4-reverse" and "mask-8-reverse".
func ParseMaskMode(s string) (MaskMode, error) {
	for m, name := range maskModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, invalidf("unknown mask mode %q", s)
}

// Kernel returns the mask weights.
func (m MaskMode) Kernel() (Kernel, error) {
	var w []float64
	switch m {
	case Mask4:
		w = []float64{0, 1, 0, 1, -4, 1, 0, 1, 0}
	case Mask8:
		w = []float64{1, 1, 1, 1, -8, 1, 1, 1, 1}
	case Mask4Reverse:
		w = []float64{0, -1, 0, -1, 4, -1, 0, -1, 0}
	case Mask8Reverse:
		w = []float64{-1, -1, -1, -1, 8, -1, -1, -1, -1}
	default:
		return Kernel{}, invalidf("unknown mask mode %d", int(m))
	}
	return Kernel{Size: 3, Weights: w}, nil
}

// sharpenSign is the c in source + c*response; it is -1 for masks with a
// negative center and +1 for the reversed ones.
func (m MaskMode) sharpenSign() float64 {
	if m == Mask4Reverse || m == Mask8Reverse {
		return 1
	}
	return -1
}

// ProcessMode selects what Laplacian returns.
type ProcessMode int

const (
	// ProcessNone returns the raw, unclamped Laplacian response.
	ProcessNone ProcessMode = iota
	// ProcessScaled stretches the response to [0,255] with Scale.
	ProcessScaled
	// ProcessSharpened adds the signed response back onto the source.
	ProcessSharpened
)

var processModeNames = map[ProcessMode]string{
	ProcessNone:      "none",
	ProcessScaled:    "scaled",
	ProcessSharpened: "sharpened",
}

func (p ProcessMode) String() string {
	if s, ok := processModeNames[p]; ok {
		return s
	}
	return fmt.Sprintf("process(%d)", int(p))
}

// ParseProcessMode accepts "none", "scaled" and "sharpened".
func ParseProcessMode(s string) (ProcessMode, error) {
	for p, name := range processModeNames {
		if name == s {
			return p, nil
		}
	}
	return 0, invalidf("unknown process mode %q", s)
}

// Laplacian convolves src with the selected mask (out-of-grid taps skipped)
// and post-processes the response according to process.
func Laplacian(ctx context.Context, src *pixel.Grid, mask MaskMode, process ProcessMode) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	kern, err := mask.Kernel()
	if err != nil {
		return nil, err
	}
	if _, ok := processModeNames[process]; !ok {
		return nil, invalidf("unknown process mode %d", int(process))
	}
	sums, err := convolveRaw(ctx, src, kern)
	if err != nil {
		return nil, err
	}

	response := pixel.NewLike(src)
	for i, p := range src.Pix {
		response.Pix[i] = pixel.Pixel{
			R: int32(math.Round(sums[i*3])),
			G: int32(math.Round(sums[i*3+1])),
			B: int32(math.Round(sums[i*3+2])),
			A: p.A,
		}
	}

	switch process {
	case ProcessScaled:
		return Scale(ctx, response)
	case ProcessSharpened:
		c := mask.sharpenSign()
		out := pixel.NewLike(src)
		for i, p := range src.Pix {
			r := response.Pix[i]
			out.Pix[i] = pixel.Pixel{
				R: pixel.ClampFloat(float64(p.R) + c*float64(r.R)),
				G: pixel.ClampFloat(float64(p.G) + c*float64(r.G)),
				B: pixel.ClampFloat(float64(p.B) + c*float64(r.B)),
				A: p.A,
			}
		}
		return out, nil
	}
	return response, nil
}

// HighBoost computes (1+k)*src - k*blurred per channel and clamps the
// result. blurred must match src's dimensions.
func HighBoost(ctx context.Context, src, blurred *pixel.Grid, k float64) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	if err := requireGrid(blurred, "blurred"); err != nil {
		return nil, err
	}
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, invalidf("k must be finite, got %v", k)
	}
	if !src.SameSize(blurred) {
		return nil, fmt.Errorf("%w: source is %dx%d, blurred is %dx%d",
			ErrDimensionMismatch, src.Width, src.Height, blurred.Width, blurred.Height)
	}
	out := pixel.NewLike(src)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			s, b := src.Pix[i], blurred.Pix[i]
			np := pixel.Pixel{A: s.A}
			for _, c := range pixel.RGB {
				v := (1+k)*float64(s.Get(c)) - k*float64(b.Get(c))
				np = np.With(c, pixel.ClampFloat(v))
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
