package imgproc

import (
	"context"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// bitPositions returns the 1-indexed positions of the bits set in mask.
func bitPositions(mask int) []int {
	var out []int
	for n := 1; n <= 8; n++ {
		if mask&(1<<(n-1)) != 0 {
			out = append(out, n)
		}
	}
	return out
}

// RemoveBitPlanes keeps only the bit planes selected by bits (0-255).
// A single selected plane is rendered as a binary 0/255 image; several
// planes reconstruct the channel from just those planes. Alpha is preserved.
func RemoveBitPlanes(ctx context.Context, src *pixel.Grid, bits int) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	if bits < 0 || bits > 255 {
		return nil, invalidf("bit mask must be between 0 and 255, got %d", bits)
	}
	planes := bitPositions(bits)
	out := pixel.NewLike(src)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			p := src.Pix[i]
			np := pixel.Pixel{A: p.A}
			for _, c := range pixel.RGB {
				v := pixel.ClampSample(p.Get(c))
				np = np.With(c, planeValue(v, planes))
			}
			out.Pix[i] = np
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func planeValue(v int32, planes []int) int32 {
	switch len(planes) {
	case 0:
		return 0
	case 1:
		bit := int32(1) << (planes[0] - 1)
		if v&bit == bit {
			return 255
		}
		return 0
	}
	var sum int32
	for _, n := range planes {
		bit := int32(1) << (n - 1)
		if v&bit == bit {
			sum += bit
		}
	}
	return sum
}
