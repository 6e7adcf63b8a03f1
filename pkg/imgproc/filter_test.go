package imgproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

func TestArithmeticMeanConstantWindow(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := ArithmeticMean(context.Background(), src, 3)
	require.NoError(t, err)
	// the center window lies inside the grid; border windows are zero-filled
	assert.Equal(t, gray(100), out.At(1, 1))
	assert.Equal(t, gray(44), out.At(0, 0))
	assert.Equal(t, gray(67), out.At(1, 0))
}

func TestWindowFiltersPreserveConstantInterior(t *testing.T) {
	src := makeSolid(t, 5, 5, gray(100))
	cases := map[FilterMethod]FilterParams{
		FilterArithmeticMean:     {Size: 3},
		FilterGeometricMean:      {Size: 3},
		FilterHarmonicMean:       {Size: 3},
		FilterContraharmonicMean: {Size: 3, Order: 1.5},
		FilterAlphaTrimmedMean:   {Size: 3, D: 4},
		FilterMin:                {Size: 3},
		FilterMax:                {Size: 3},
		FilterMedian:             {Size: 3},
		FilterGaussianSmoothing:  {Size: 3, K: 1, Sigma: 1},
	}
	for m, p := range cases {
		out, err := Filter(context.Background(), m, src, p)
		require.NoError(t, err, m.String())
		assert.Equal(t, gray(100), out.At(2, 2), m.String())
	}
}

func TestFiltersKeepAlpha(t *testing.T) {
	src := makeRandom(t, 7, 6, 11)
	blurred := makeRandom(t, 7, 6, 12)
	params := FilterParams{
		Size: 3, K: 1, Sigma: 1, Order: -1, D: 2,
		Mask: Mask8, Process: ProcessSharpened,
		Blurred: blurred, BoostK: 1.5,
	}
	for _, m := range FilterMethods() {
		out, err := Filter(context.Background(), m, src, params)
		require.NoError(t, err, m.String())
		assertAlphaKept(t, src, out)
	}
}

func TestGeometricMeanBorderCountsOne(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := GeometricMean(context.Background(), src, 3)
	require.NoError(t, err)
	// corner: four samples of 100, five out-of-grid ones -> 10^(8/9)
	assert.Equal(t, gray(8), out.At(0, 0))
	assert.Equal(t, gray(100), out.At(1, 1))
}

func TestGeometricMeanZeroShift(t *testing.T) {
	src := makeGray(t, [][]int32{{0}})
	out, err := GeometricMean(context.Background(), src, 1)
	require.NoError(t, err)
	assert.Equal(t, gray(0), out.At(0, 0))

	// centered on (1,0) the window holds 0, 3, 3 and six out-of-grid ones;
	// shifted by one: (2^6 * 1 * 4^2)^(1/9) - 1
	src = makeGray(t, [][]int32{{0, 3, 3}})
	out, err = GeometricMean(context.Background(), src, 3)
	require.NoError(t, err)
	assert.Equal(t, gray(1), out.At(1, 0))
}

func TestHarmonicMeanZeroHandling(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := HarmonicMean(context.Background(), src, 3)
	require.NoError(t, err)
	// zero-filled samples add nothing to the reciprocal sum: 9 / (4/100)
	assert.Equal(t, gray(225), out.At(0, 0))

	zero := makeSolid(t, 2, 2, gray(0))
	out, err = HarmonicMean(context.Background(), zero, 3)
	require.NoError(t, err)
	assert.True(t, zero.Equal(out))
}

func TestContraharmonicMeanDegenerate(t *testing.T) {
	zero := makeSolid(t, 3, 3, gray(0))
	for _, q := range []float64{-1, 0, 1} {
		out, err := ContraharmonicMean(context.Background(), zero, 3, q)
		require.NoError(t, err)
		assert.True(t, zero.Equal(out), "order %v", q)
	}
}

func TestContraharmonicMeanOrder(t *testing.T) {
	src := makeGray(t, [][]int32{{10, 20, 30}})
	out, err := ContraharmonicMean(context.Background(), src, 1, 1)
	require.NoError(t, err)
	assert.True(t, src.Equal(out), "size 1 window is the sample itself")

	// 3x3 window centered on (1,0): samples 10, 20, 30 and six zeros
	out, err = ContraharmonicMean(context.Background(), src, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, gray(23), out.At(1, 0)) // 1400/60
}

func TestAlphaTrimmedMean(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(50))
	src.Pix[src.Offset(1, 1)] = gray(255)
	src.Pix[src.Offset(0, 0)] = gray(0)
	out, err := AlphaTrimmedMean(context.Background(), src, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, gray(50), out.At(1, 1))

	out, err = AlphaTrimmedMean(context.Background(), src, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, gray(67), out.At(1, 1)) // (0+255+7*50)/9
}

func TestAlphaTrimmedMeanInvalidD(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(50))
	_, err := AlphaTrimmedMean(context.Background(), src, 3, 8)
	assert.NoError(t, err)
	for _, d := range []int{-1, 10, 100} {
		_, err := AlphaTrimmedMean(context.Background(), src, 3, d)
		assert.ErrorIs(t, err, ErrInvalidParameter, "d=%d", d)
	}
}

func TestOrderStatistics(t *testing.T) {
	src := makeGray(t, [][]int32{
		{10, 20, 30},
		{40, 250, 60},
		{70, 80, 90},
	})
	ctx := context.Background()
	cases := []struct {
		name string
		fn   func(context.Context, *pixel.Grid, int) (*pixel.Grid, error)
		want int32
	}{
		{"min", MinFilter, 10},
		{"max", MaxFilter, 250},
		{"median", MedianFilter, 60},
		{"midpoint", MidpointFilter, 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.fn(ctx, src, 3)
			require.NoError(t, err)
			assert.Equal(t, gray(tc.want), out.At(1, 1))
			// corners see five zero-filled samples
			if tc.name == "min" {
				assert.Equal(t, gray(0), out.At(0, 0))
			}
		})
	}
}

func TestMedianRemovesSalt(t *testing.T) {
	src := makeSolid(t, 5, 5, gray(50))
	src.Pix[src.Offset(2, 2)] = gray(255)
	out, err := MedianFilter(context.Background(), src, 3)
	require.NoError(t, err)
	assert.Equal(t, gray(50), out.At(2, 2))
}

func TestWindowFiltersRejectBadSize(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(1))
	for _, m := range FilterMethods() {
		if !m.UsesWindow() {
			continue
		}
		for _, size := range []int{0, 2, -3} {
			_, err := Filter(context.Background(), m, src, FilterParams{Size: size, K: 1, Sigma: 1})
			assert.ErrorIs(t, err, ErrInvalidParameter, "%s size=%d", m, size)
		}
	}
}

func TestFilterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MedianFilter(ctx, makeRandom(t, 20, 20, 1), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGaussianKernel(t *testing.T) {
	kern, sum, err := GaussianKernel(3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 2, 1, 1, 1, 1}, kern.Weights)
	assert.Equal(t, 10.0, sum)

	// K cancels out of the normalization
	kern2, _, err := GaussianKernel(3, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, kern.Weights, kern2.Weights)
}

func TestGaussianKernelInvalid(t *testing.T) {
	_, _, err := GaussianKernel(3, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, err = GaussianKernel(3, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, err = GaussianKernel(4, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGaussianSmoothSkipsOutOfGridTaps(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := GaussianSmooth(context.Background(), src, 3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, gray(100), out.At(1, 1))
	// corner keeps weights 2+1+1+1 out of 10
	assert.Equal(t, gray(50), out.At(0, 0))
}

func TestLaplacianRawResponse(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := Laplacian(context.Background(), src, Mask4, ProcessNone)
	require.NoError(t, err)
	assert.Equal(t, gray(0), out.At(1, 1))
	// corner: -4*100 + 2*100, left unclamped
	assert.Equal(t, gray(-200), out.At(0, 0))
}

func TestLaplacianSharpened(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(100))
	out, err := Laplacian(context.Background(), src, Mask4, ProcessSharpened)
	require.NoError(t, err)
	assert.Equal(t, gray(100), out.At(1, 1))
	assert.Equal(t, gray(255), out.At(0, 0))
}

func TestLaplacianReverseMasksSharpenAlike(t *testing.T) {
	src := makeRandom(t, 8, 8, 13)
	for _, pair := range [][2]MaskMode{{Mask4, Mask4Reverse}, {Mask8, Mask8Reverse}} {
		a, err := Laplacian(context.Background(), src, pair[0], ProcessSharpened)
		require.NoError(t, err)
		b, err := Laplacian(context.Background(), src, pair[1], ProcessSharpened)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "%s vs %s", pair[0], pair[1])
	}
}

func TestLaplacianScaledLeavesSourceIntact(t *testing.T) {
	src := makeRandom(t, 8, 8, 14)
	before := src.Clone()
	out, err := Laplacian(context.Background(), src, Mask8, ProcessScaled)
	require.NoError(t, err)
	assert.True(t, before.Equal(src))
	for _, p := range out.Pix {
		for _, c := range pixel.RGB {
			v := p.Get(c)
			assert.True(t, v >= 0 && v <= 255)
		}
	}
}

func TestLaplacianInvalidModes(t *testing.T) {
	src := makeSolid(t, 3, 3, gray(1))
	_, err := Laplacian(context.Background(), src, MaskMode(9), ProcessNone)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Laplacian(context.Background(), src, Mask4, ProcessMode(9))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestHighBoostAgainstItself(t *testing.T) {
	src := makeRandom(t, 9, 9, 15)
	out, err := HighBoost(context.Background(), src, src, 2)
	require.NoError(t, err)
	assert.True(t, src.Equal(out))
}

func TestHighBoostFormula(t *testing.T) {
	src := makeGray(t, [][]int32{{100, 10}})
	blurred := makeGray(t, [][]int32{{80, 20}})
	out, err := HighBoost(context.Background(), src, blurred, 1)
	require.NoError(t, err)
	assert.Equal(t, gray(120), out.At(0, 0))
	assert.Equal(t, gray(0), out.At(1, 0))
}

func TestHighBoostDimensionMismatch(t *testing.T) {
	_, err := HighBoost(context.Background(), makeSolid(t, 2, 2, gray(1)), makeSolid(t, 3, 2, gray(1)), 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestParseFilterEnums(t *testing.T) {
	for _, m := range FilterMethods() {
		got, err := ParseFilterMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseFilterMethod("median")
	require.NoError(t, err)
	assert.Equal(t, FilterMedian, got)
	_, err = ParseFilterMethod("sobel")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	for _, m := range []MaskMode{Mask4, Mask8, Mask4Reverse, Mask8Reverse} {
		got, err := ParseMaskMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err = ParseMaskMode("mask-6")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	for _, p := range []ProcessMode{ProcessNone, ProcessScaled, ProcessSharpened} {
		got, err := ParseProcessMode(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err = ParseProcessMode("blurred")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
