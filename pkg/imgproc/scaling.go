package imgproc

import (
	"context"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// Scale stretches each of R, G and B independently so that the channel's
// minimum maps to 0 and its maximum to 255. Inputs may hold raw values
// outside [0,255] (a Laplacian response, for instance). A constant channel
// becomes 0. Alpha is copied unchanged and src is never modified.
func Scale(ctx context.Context, src *pixel.Grid) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}

	var lo, hi [3]int32
	for ci, c := range pixel.RGB {
		lo[ci] = math.MaxInt32
		hi[ci] = math.MinInt32
		for _, p := range src.Pix {
			v := p.Get(c)
			if v < lo[ci] {
				lo[ci] = v
			}
			if v > hi[ci] {
				hi[ci] = v
			}
		}
	}

	// the divisor is the max of the shifted values, i.e. hi-lo
	var span [3]float64
	for ci := range span {
		span[ci] = float64(int64(hi[ci]) - int64(lo[ci]))
	}

	out := pixel.NewLike(src)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			p := src.Pix[i]
			np := pixel.Pixel{A: p.A}
			for ci, c := range pixel.RGB {
				if span[ci] == 0 {
					continue
				}
				shifted := float64(int64(p.Get(c)) - int64(lo[ci]))
				np = np.With(c, pixel.ClampFloat(shifted*255/span[ci]))
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
