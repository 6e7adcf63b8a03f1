package imgproc

import (
	"context"
	"math"
	"sort"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// orderStatistic sorts the window and hands it to pick. Samples outside
// the grid count as 0.
func orderStatistic(ctx context.Context, src *pixel.Grid, size int, pick func(sorted []float64) float64) (*pixel.Grid, error) {
	return windowFilter(ctx, src, windowSpec{
		size: size,
		reduce: func(s []float64) float64 {
			sort.Float64s(s)
			return pick(s)
		},
	})
}

// MinFilter takes the smallest sample of each window.
func MinFilter(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return orderStatistic(ctx, src, size, func(s []float64) float64 { return s[0] })
}

// MaxFilter takes the largest sample of each window.
func MaxFilter(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return orderStatistic(ctx, src, size, func(s []float64) float64 { return s[len(s)-1] })
}

// MedianFilter takes the sample at index floor(size²/2) of each sorted window.
func MedianFilter(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return orderStatistic(ctx, src, size, func(s []float64) float64 { return s[len(s)/2] })
}

// MidpointFilter outputs round((max-min)/2) of each window.
func MidpointFilter(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	return orderStatistic(ctx, src, size, func(s []float64) float64 {
		return math.Round((s[len(s)-1] - s[0]) / 2)
	})
}
