package imgproc

import (
	"context"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// gamma-weighted luminance: ((R^2.2 + (1.5G)^2.2 + (0.6B)^2.2) / norm)^(1/2.2)
var grayNorm = 1 + math.Pow(1.5, 2.2) + math.Pow(0.6, 2.2)

func luminance(p pixel.Pixel) float64 {
	r := float64(pixel.ClampSample(p.R))
	g := float64(pixel.ClampSample(p.G))
	b := float64(pixel.ClampSample(p.B))
	sum := math.Pow(r, 2.2) + math.Pow(1.5*g, 2.2) + math.Pow(0.6*b, 2.2)
	return math.Pow(sum/grayNorm, 1/2.2)
}

// quantizeGray maps gray onto one of level evenly spaced values.
func quantizeGray(gray float64, level int) float64 {
	gap := math.Floor(256 / float64(level-1))
	target := math.Round((gray + 1) / 256 * float64(level-1))
	return target * gap
}

// GrayLevelResolution converts src to gray and reduces it to 2^bit levels.
// Alpha is preserved; the result is always grayscale.
func GrayLevelResolution(ctx context.Context, src *pixel.Grid, bit int) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	if bit < 1 || bit > 8 {
		return nil, invalidf("bit must be between 1 and 8, got %d", bit)
	}
	level := 1 << bit
	out := pixel.NewLike(src)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			p := src.Pix[i]
			gray := luminance(p)
			if level != 256 {
				gray = quantizeGray(gray, level)
			}
			v := pixel.ClampFloat(gray)
			out.Pix[i] = pixel.Pixel{R: v, G: v, B: v, A: p.A}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
