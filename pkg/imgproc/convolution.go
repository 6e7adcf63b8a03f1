package imgproc

import (
	"context"
	"math"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// Kernel is a square convolution mask, row-major.
type Kernel struct {
	Size    int
	Weights []float64
}

func (k Kernel) at(i, j int) float64 { return k.Weights[j*k.Size+i] }

// Sum returns the sum of all weights.
func (k Kernel) Sum() float64 {
	s := 0.0
	for _, w := range k.Weights {
		s += w
	}
	return s
}

// GaussianKernel builds the integer-valued smoothing mask
// floor(K*exp(-(dx²+dy²)/(2σ²)) / m00), where m00 is the unnormalized corner
// weight, and returns it with its weight sum.
func GaussianKernel(size int, k, sigma float64) (Kernel, float64, error) {
	if err := validateKernelSize(size); err != nil {
		return Kernel{}, 0, err
	}
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return Kernel{}, 0, invalidf("K must be finite and non-zero, got %v", k)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return Kernel{}, 0, invalidf("sigma must be positive, got %v", sigma)
	}
	offset := size / 2
	raw := make([]float64, size*size)
	for j := 0; j < size; j++ {
		dy := float64(j - offset)
		for i := 0; i < size; i++ {
			dx := float64(i - offset)
			raw[j*size+i] = k * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
		}
	}
	corner := raw[0]
	kern := Kernel{Size: size, Weights: make([]float64, len(raw))}
	for i, v := range raw {
		kern.Weights[i] = math.Floor(v / corner)
	}
	sum := kern.Sum()
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Kernel{}, 0, invalidf("gaussian mask for size=%d sigma=%v is degenerate", size, sigma)
	}
	return kern, sum, nil
}

// convolveRaw applies kern to R, G and B and returns the unrounded sums.
// Taps outside the grid are skipped rather than zero-filled. Alpha is not
// touched; the returned slice holds three values per pixel.
func convolveRaw(ctx context.Context, src *pixel.Grid, kern Kernel) ([]float64, error) {
	offset := kern.Size / 2
	sums := make([]float64, len(src.Pix)*3)
	err := parallelRows(ctx, src.Height, func(y int) {
		for x := 0; x < src.Width; x++ {
			var acc [3]float64
			for j := 0; j < kern.Size; j++ {
				t := y - offset + j
				if t < 0 || t >= src.Height {
					continue
				}
				for i := 0; i < kern.Size; i++ {
					s := x - offset + i
					if s < 0 || s >= src.Width {
						continue
					}
					w := kern.at(i, j)
					p := src.Pix[src.Offset(s, t)]
					acc[0] += w * float64(p.R)
					acc[1] += w * float64(p.G)
					acc[2] += w * float64(p.B)
				}
			}
			copy(sums[src.Offset(x, y)*3:], acc[:])
		}
	})
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// GaussianSmooth convolves src with GaussianKernel(size, k, sigma) and
// divides by the full mask sum, so edge pixels darken where taps are
// skipped.
func GaussianSmooth(ctx context.Context, src *pixel.Grid, size int, k, sigma float64) (*pixel.Grid, error) {
	if err := requireGrid(src, "source"); err != nil {
		return nil, err
	}
	kern, sum, err := GaussianKernel(size, k, sigma)
	if err != nil {
		return nil, err
	}
	sums, err := convolveRaw(ctx, src, kern)
	if err != nil {
		return nil, err
	}
	out := pixel.NewLike(src)
	for i, p := range src.Pix {
		out.Pix[i] = pixel.Pixel{
			R: pixel.ClampFloat(sums[i*3] / sum),
			G: pixel.ClampFloat(sums[i*3+1] / sum),
			B: pixel.ClampFloat(sums[i*3+2] / sum),
			A: p.A,
		}
	}
	return out, nil
}
