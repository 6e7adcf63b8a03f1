package imgproc

import (
	"context"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// gatherWindow appends the channel c samples of the size x size window
// centered on (x, y) to buf[:0], row by row. Samples outside the grid take
// the value fill. When clamp is set, in-bounds samples are clamped to
// [0,255] first.
func gatherWindow(src *pixel.Grid, x, y, size int, c pixel.Channel, fill float64, clamp bool, buf []float64) []float64 {
	offset := size / 2
	buf = buf[:0]
	for j := 0; j < size; j++ {
		t := y - offset + j
		for i := 0; i < size; i++ {
			s := x - offset + i
			if !src.In(s, t) {
				buf = append(buf, fill)
				continue
			}
			v := src.Pix[src.Offset(s, t)].Get(c)
			if clamp {
				v = pixel.ClampSample(v)
			}
			buf = append(buf, float64(v))
		}
	}
	return buf
}

// windowSpec configures windowFilter.
type windowSpec struct {
	size int
	// value used for samples that fall outside the grid
	fill float64
	// clamp in-bounds samples to [0,255] before reduce sees them
	clamp bool
	// reduce maps one channel's window to the output sample; it may reorder
	// samples in place.
	reduce func(samples []float64) float64
}

// windowFilter runs spec.reduce over the R, G and B window of every pixel.
// Alpha is copied from src.
func windowFilter(ctx context.Context, src *pixel.Grid, spec windowSpec) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	if err := validateKernelSize(spec.size); err != nil {
		return nil, err
	}
	out := pixel.NewLike(src)
	n := spec.size * spec.size
	err := parallelRows(ctx, src.Height, func(y int) {
		buf := make([]float64, 0, n)
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			np := pixel.Pixel{A: src.Pix[i].A}
			for _, c := range pixel.RGB {
				buf = gatherWindow(src, x, y, spec.size, c, spec.fill, spec.clamp, buf)
				np = np.With(c, pixel.ClampFloat(spec.reduce(buf)))
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
