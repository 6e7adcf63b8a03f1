package imgproc

import (
	"context"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// ResampleMethod selects a spatial-resolution kernel.
type ResampleMethod int

const (
	NearestNeighbor ResampleMethod = iota
	LinearX
	LinearY
	Bilinear
)

var resampleNames = map[ResampleMethod]string{
	NearestNeighbor: "nearest-neighbor-interpolation",
	LinearX:         "linear-interpolation-x",
	LinearY:         "linear-interpolation-y",
	Bilinear:        "bilinear-interpolation",
}

func (m ResampleMethod) String() string {
	if s, ok := resampleNames[m]; ok {
		return s
	}
	return "unknown-interpolation"
}

// ParseResampleMethod accepts the long names above and the short aliases
// nearest, linear-x, linear-y and bilinear.
func ParseResampleMethod(s string) (ResampleMethod, error) {
	switch s {
	case "nearest", "nearest-neighbor", "nearest-neighbor-interpolation":
		return NearestNeighbor, nil
	case "linear-x", "linear-interpolation-x":
		return LinearX, nil
	case "linear-y", "linear-interpolation-y":
		return LinearY, nil
	case "bilinear", "bilinear-interpolation":
		return Bilinear, nil
	}
	return 0, invalidf("unknown resample method %q", s)
}

// Resample dispatches to the kernel named by method.
func Resample(ctx context.Context, method ResampleMethod, src *pixel.Grid, dstW, dstH int) (*pixel.Grid, error) {
	switch method {
	case NearestNeighbor:
		return ResampleNearest(ctx, src, dstW, dstH)
	case LinearX:
		return ResampleLinear(ctx, src, dstW, dstH, AxisX)
	case LinearY:
		return ResampleLinear(ctx, src, dstW, dstH, AxisY)
	case Bilinear:
		return ResampleBilinear(ctx, src, dstW, dstH)
	}
	return nil, invalidf("unknown resample method %d", int(method))
}

// Axis is the interpolation direction of ResampleLinear.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// resampleSetup validates inputs and returns the destination grid and the
// source/destination ratios.
func resampleSetup(src *pixel.Grid, dstW, dstH int) (*pixel.Grid, float64, float64, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, 0, 0, err
	}
	if dstW < 1 || dstH < 1 {
		return nil, 0, 0, invalidf("destination size must be at least 1x1, got %dx%d", dstW, dstH)
	}
	dst, err := pixel.New(dstW, dstH)
	if err != nil {
		return nil, 0, 0, err
	}
	return dst, float64(src.Width) / float64(dstW), float64(src.Height) / float64(dstH), nil
}

// ResampleNearest copies, for each destination pixel, the source pixel
// closest to (x*widthRatio, y*heightRatio).
func ResampleNearest(ctx context.Context, src *pixel.Grid, dstW, dstH int) (*pixel.Grid, error) {
	dst, wr, hr, err := resampleSetup(src, dstW, dstH)
	if err != nil {
		return nil, err
	}
	err = parallelRows(ctx, dstH, func(y int) {
		j := clampInt(int(math.Round(float64(y)*hr)), 0, src.Height-1)
		for x := 0; x < dstW; x++ {
			i := clampInt(int(math.Round(float64(x)*wr)), 0, src.Width-1)
			dst.Pix[dst.Offset(x, y)] = src.At(i, j)
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// ResampleLinear interpolates along one axis between the rounded source
// sample and its successor; the other axis uses the nearest row or column.
func ResampleLinear(ctx context.Context, src *pixel.Grid, dstW, dstH int, axis Axis) (*pixel.Grid, error) {
	if axis != AxisX && axis != AxisY {
		return nil, invalidf("unknown interpolation axis %d", int(axis))
	}
	dst, wr, hr, err := resampleSetup(src, dstW, dstH)
	if err != nil {
		return nil, err
	}
	err = parallelRows(ctx, dstH, func(y int) {
		srcY := float64(y) * hr
		j := clampInt(int(math.Round(srcY)), 0, src.Height-1)
		for x := 0; x < dstW; x++ {
			srcX := float64(x) * wr
			i := clampInt(int(math.Round(srcX)), 0, src.Width-1)
			var p0, p1 pixel.Pixel
			var t float64
			if axis == AxisX {
				x0 := i
				x1 := clampInt(i+1, 0, src.Width-1)
				p0, p1 = src.At(x0, j), src.At(x1, j)
				if x1 != x0 {
					t = (srcX - float64(x0)) / float64(x1-x0)
				}
			} else {
				y0 := j
				y1 := clampInt(j+1, 0, src.Height-1)
				p0, p1 = src.At(i, y0), src.At(i, y1)
				if y1 != y0 {
					t = (srcY - float64(y0)) / float64(y1-y0)
				}
			}
			dst.Pix[dst.Offset(x, y)] = lerpPixel(p0, p1, t)
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func lerpPixel(p0, p1 pixel.Pixel, t float64) pixel.Pixel {
	lerp := func(a, b int32) int32 {
		return pixel.ClampFloat(float64(a) + t*float64(b-a))
	}
	return pixel.Pixel{
		R: lerp(p0.R, p1.R),
		G: lerp(p0.G, p1.G),
		B: lerp(p0.B, p1.B),
		A: lerp(p0.A, p1.A),
	}
}

// ResampleBilinear weights the four source pixels around
// (x*widthRatio, y*heightRatio) by their fractional distances.
func ResampleBilinear(ctx context.Context, src *pixel.Grid, dstW, dstH int) (*pixel.Grid, error) {
	dst, wr, hr, err := resampleSetup(src, dstW, dstH)
	if err != nil {
		return nil, err
	}
	err = parallelRows(ctx, dstH, func(y int) {
		srcY := float64(y) * hr
		j := math.Floor(srcY)
		b := srcY - j
		y1 := clampInt(int(j), 0, src.Height-1)
		y2 := clampInt(int(j)+1, 0, src.Height-1)
		for x := 0; x < dstW; x++ {
			srcX := float64(x) * wr
			i := math.Floor(srcX)
			a := srcX - i
			x1 := clampInt(int(i), 0, src.Width-1)
			x2 := clampInt(int(i)+1, 0, src.Width-1)

			q11 := src.At(x1, y1)
			q21 := src.At(x2, y1)
			q22 := src.At(x2, y2)
			q12 := src.At(x1, y2)

			c11 := (1 - a) * (1 - b)
			c21 := a * (1 - b)
			c22 := a * b
			c12 := (1 - a) * b

			var out pixel.Pixel
			for _, c := range [4]pixel.Channel{pixel.R, pixel.G, pixel.B, pixel.A} {
				v := c11*float64(q11.Get(c)) + c21*float64(q21.Get(c)) + c22*float64(q22.Get(c)) + c12*float64(q12.Get(c))
				out = out.With(c, pixel.ClampFloat(v))
			}
			dst.Pix[dst.Offset(x, y)] = out
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
