package imgproc

import (
	"context"
	"image"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// Levels is the number of intensity levels per channel.
const Levels = 256

// Histogram holds per-channel level counts.
type Histogram struct {
	R, G, B [Levels]int
	Total   int
}

// Channel returns the counts for c; alpha has no histogram.
func (h *Histogram) Channel(c pixel.Channel) *[Levels]int {
	switch c {
	case pixel.G:
		return &h.G
	case pixel.B:
		return &h.B
	}
	return &h.R
}

// ComputeHistogram counts every pixel of src. Samples are clamped to
// [0,255] before counting.
func ComputeHistogram(src *pixel.Grid) (Histogram, error) {
	if err := requireGrid(src, "source"); err != nil {
		return Histogram{}, err
	}
	return regionHistogram(src, image.Rect(0, 0, src.Width, src.Height)), nil
}

func regionHistogram(src *pixel.Grid, r image.Rectangle) Histogram {
	var h Histogram
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := src.At(x, y)
			h.R[pixel.ClampSample(p.R)]++
			h.G[pixel.ClampSample(p.G)]++
			h.B[pixel.ClampSample(p.B)]++
			h.Total++
		}
	}
	return h
}

// equalizationMap returns s[k] = round(255 * cdf[k] / total).
func equalizationMap(counts *[Levels]int, total int) [Levels]int32 {
	var s [Levels]int32
	cdf := 0
	for k := 0; k < Levels; k++ {
		cdf += counts[k]
		s[k] = int32(math.Round(float64((Levels-1)*cdf) / float64(total)))
	}
	return s
}

// EqualizeGlobal equalizes R, G and B over region, using the histogram of
// that region only. Pixels outside region are copied. The zero rectangle
// selects the whole grid; other rectangles are intersected with the grid
// bounds and must not come out empty.
func EqualizeGlobal(ctx context.Context, src *pixel.Grid, region image.Rectangle) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	bounds := image.Rect(0, 0, src.Width, src.Height)
	if region == (image.Rectangle{}) {
		region = bounds
	} else {
		region = region.Canon().Intersect(bounds)
		if region.Empty() {
			return nil, invalidf("equalization region lies outside the %dx%d image", src.Width, src.Height)
		}
	}

	h := regionHistogram(src, region)
	maps := [3][Levels]int32{
		equalizationMap(&h.R, h.Total),
		equalizationMap(&h.G, h.Total),
		equalizationMap(&h.B, h.Total),
	}

	out := src.Clone()
	err := parallelRows(ctx, src.Height, func(y int) {
		if y < region.Min.Y || y >= region.Max.Y {
			return
		}
		for x := region.Min.X; x < region.Max.X; x++ {
			i := src.Offset(x, y)
			p := src.Pix[i]
			np := pixel.Pixel{A: p.A}
			for ci, c := range pixel.RGB {
				np = np.With(c, maps[ci][pixel.ClampSample(p.Get(c))])
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EqualizeLocal remaps every pixel through the equalization of its own
// size x size neighborhood, with out-of-grid samples counted as level 0.
// Only the cumulative count up to the center value matters, so each window
// is scanned once per channel instead of building a full histogram.
// Cost is O(width*height*size²).
func EqualizeLocal(ctx context.Context, src *pixel.Grid, size int) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	if err := validateKernelSize(size); err != nil {
		return nil, err
	}
	n := float64(size * size)
	offset := size / 2
	out := pixel.NewLike(src)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			center := src.Pix[i]
			np := pixel.Pixel{A: center.A}
			for _, c := range pixel.RGB {
				cv := pixel.ClampSample(center.Get(c))
				below := 0
				for t := y - offset; t <= y+offset; t++ {
					for s := x - offset; s <= x+offset; s++ {
						if !src.In(s, t) {
							below++ // level 0 never exceeds cv
							continue
						}
						if pixel.ClampSample(src.Pix[src.Offset(s, t)].Get(c)) <= cv {
							below++
						}
					}
				}
				np = np.With(c, int32(math.Round(float64(Levels-1)*float64(below)/n)))
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
