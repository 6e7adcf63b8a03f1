package imgproc

import (
	"context"
	"math"
	"sort"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// ArithmeticMean replaces each sample with the mean of its size x size
// window. Samples outside the grid count as 0.
func ArithmeticMean(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return windowFilter(ctx, src, windowSpec{
		size: size,
		reduce: func(s []float64) float64 {
			sum := 0.0
			for _, v := range s {
				sum += v
			}
			return sum / float64(len(s))
		},
	})
}

// GeometricMean computes exp10(mean(log10(samples))) per window. Samples
// outside the grid count as 1. When a channel's window contains a zero,
// every sample is shifted up by one and the result shifted back down.
func GeometricMean(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return windowFilter(ctx, src, windowSpec{
		size:  size,
		fill:  1,
		clamp: true,
		reduce: func(s []float64) float64 {
			shift := 0.0
			for _, v := range s {
				if v == 0 {
					shift = 1
					break
				}
			}
			sum := 0.0
			for _, v := range s {
				sum += math.Log10(v + shift)
			}
			return math.Pow(10, sum/float64(len(s))) - shift
		},
	})
}

// HarmonicMean computes size² / sum(1/sample). Zero samples (including
// out-of-grid ones) add nothing to the reciprocal sum; a window with no
// non-zero sample yields 0.
func HarmonicMean(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return windowFilter(ctx, src, windowSpec{
		size: size,
		reduce: func(s []float64) float64 {
			recip := 0.0
			for _, v := range s {
				if v != 0 {
					recip += 1 / v
				}
			}
			if recip == 0 {
				return 0
			}
			return float64(len(s)) / recip
		},
	})
}

// ContraharmonicMean computes sum(s^(Q+1)) / sum(s^Q) for order Q. A zero
// denominator or any non-finite quotient yields 0.
func ContraharmonicMean(ctx context.Context, src *pixel.Grid, size int, order float64) (*pixel.Grid, error) {
	if math.IsNaN(order) || math.IsInf(order, 0) {
		return nil, invalidf("order must be finite, got %v", order)
	}
	return windowFilter(ctx, src, windowSpec{
		size: size,
		reduce: func(s []float64) float64 {
			num, den := 0.0, 0.0
			for _, v := range s {
				num += math.Pow(v, order+1)
				den += math.Pow(v, order)
			}
			if den == 0 {
				return 0
			}
			q := num / den
			if math.IsNaN(q) || math.IsInf(q, 0) {
				return 0
			}
			return q
		},
	})
}

// AlphaTrimmedMean sorts each window, drops floor(d/2) samples from both
// ends and averages the rest. d must leave at least one sample.
func AlphaTrimmedMean(ctx context.Context, src *pixel.Grid, size, d int) (*pixel.Grid, error) {
	if err := validateKernelSize(size); err != nil {
		return nil, err
	}
	trim := d / 2
	if d < 0 || 2*trim >= size*size {
		return nil, invalidf("d=%d trims every sample of a %dx%d window", d, size, size)
	}
	return windowFilter(ctx, src, windowSpec{
		size: size,
		reduce: func(s []float64) float64 {
			sort.Float64s(s)
			kept := s[trim : len(s)-trim]
			sum := 0.0
			for _, v := range kept {
				sum += v
			}
			return sum / float64(len(kept))
		},
	})
}
