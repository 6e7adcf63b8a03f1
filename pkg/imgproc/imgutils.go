// Package imgproc implements the pixel-matrix operators: resampling kernels,
// point transforms, neighborhood filters, histogram equalization and
// pairwise grid arithmetic. Every operator allocates a fresh result grid and
// never writes to its inputs.
package imgproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

var (
	// ErrInvalidParameter reports an out-of-domain scalar or enum argument.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDimensionMismatch reports two grids that must share dimensions but do not.
	ErrDimensionMismatch = errors.New("grid dimensions do not match")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// requireGrid rejects nil or malformed grids.
func requireGrid(g *pixel.Grid, name string) error {
	if g == nil {
		return invalidf("%s image is nil", name)
	}
	if g.Width < 1 || g.Height < 1 || len(g.Pix) != g.Width*g.Height {
		return invalidf("%s image is malformed (%dx%d, %d pixels)", name, g.Width, g.Height, len(g.Pix))
	}
	return nil
}

// validateKernelSize accepts positive odd window sizes.
func validateKernelSize(size int) error {
	if size < 1 {
		return invalidf("kernel size must be positive, got %d", size)
	}
	if size%2 == 0 {
		return invalidf("kernel size must be odd, got %d", size)
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rowBand is a half-open range of rows handled by one goroutine.
type rowBand struct {
	start, end int
}

// rowBands splits height rows into at most n contiguous bands.
func rowBands(height, n int) []rowBand {
	if n < 1 {
		n = 1
	}
	if n > height {
		n = height
	}
	per := (height + n - 1) / n
	bands := make([]rowBand, 0, n)
	for start := 0; start < height; start += per {
		end := start + per
		if end > height {
			end = height
		}
		bands = append(bands, rowBand{start, end})
	}
	return bands
}

// parallelRows calls fn for every row in [0, height) across GOMAXPROCS
// goroutines. Each band checks ctx before every row so long filters stop
// promptly once the caller gives up.
func parallelRows(ctx context.Context, height int, fn func(y int)) error {
	g, ctx := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	g.SetLimit(workers)
	for _, band := range rowBands(height, workers) {
		band := band
		g.Go(func() error {
			for y := band.start; y < band.end; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				fn(y)
			}
			return nil
		})
	}
	return g.Wait()
}
