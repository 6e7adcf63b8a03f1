package imgproc

import (
	"context"
	"fmt"
	"strings"

	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// FilterMethod selects one of the neighborhood filters.
type FilterMethod int

const (
	FilterArithmeticMean FilterMethod = iota
	FilterGeometricMean
	FilterHarmonicMean
	FilterContraharmonicMean
	FilterAlphaTrimmedMean
	FilterMin
	FilterMax
	FilterMedian
	FilterMidpoint
	FilterGaussianSmoothing
	FilterLaplacian
	FilterHighBoost
)

var filterNames = []string{
	FilterArithmeticMean:     "arithmetic-mean-filter",
	FilterGeometricMean:      "geometric-mean-filter",
	FilterHarmonicMean:       "harmonic-mean-filter",
	FilterContraharmonicMean: "contraharmonic-mean-filter",
	FilterAlphaTrimmedMean:   "alpha-trimmed-mean-filter",
	FilterMin:                "min-filter",
	FilterMax:                "max-filter",
	FilterMedian:             "median-filter",
	FilterMidpoint:           "midpoint-filter",
	FilterGaussianSmoothing:  "gaussian-smoothing-filter",
	FilterLaplacian:          "sharpening-laplacian-filter",
	FilterHighBoost:          "high-boosting-filter",
}

// FilterMethods lists every method in declaration order.
func FilterMethods() []FilterMethod {
	out := make([]FilterMethod, len(filterNames))
	for i := range out {
		out[i] = FilterMethod(i)
	}
	return out
}

func (m FilterMethod) String() string {
	if m >= 0 && int(m) < len(filterNames) {
		return filterNames[m]
	}
	return fmt.Sprintf("filter(%d)", int(m))
}

// ParseFilterMethod accepts the full names ("median-filter") and the same
// names without the "-filter" suffix ("median", "gaussian-smoothing").
func ParseFilterMethod(s string) (FilterMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range filterNames {
		if s == name || s+"-filter" == name {
			return FilterMethod(i), nil
		}
	}
	switch s {
	case "gaussian":
		return FilterGaussianSmoothing, nil
	case "laplacian":
		return FilterLaplacian, nil
	case "high-boost", "highboost":
		return FilterHighBoost, nil
	}
	return 0, invalidf("unknown filter method %q", s)
}

// UsesWindow reports whether m takes a kernel size.
func (m FilterMethod) UsesWindow() bool {
	return m != FilterLaplacian && m != FilterHighBoost
}

// FilterParams carries the method-specific arguments of Filter. Only the
// fields relevant to the selected method are read.
type FilterParams struct {
	Size int

	// gaussian smoothing
	K     float64
	Sigma float64

	// contraharmonic mean
	Order float64

	// alpha-trimmed mean
	D int

	// laplacian
	Mask    MaskMode
	Process ProcessMode

	// high-boost
	Blurred *pixel.Grid
	BoostK  float64
}

// Filter dispatches to the neighborhood filter named by method.
func Filter(ctx context.Context, method FilterMethod, src *pixel.Grid, p FilterParams) (*pixel.Grid, error) {
	switch method {
	case FilterArithmeticMean:
		return ArithmeticMean(ctx, src, p.Size)
	case FilterGeometricMean:
		return GeometricMean(ctx, src, p.Size)
	case FilterHarmonicMean:
		return HarmonicMean(ctx, src, p.Size)
	case FilterContraharmonicMean:
		return ContraharmonicMean(ctx, src, p.Size, p.Order)
	case FilterAlphaTrimmedMean:
		return AlphaTrimmedMean(ctx, src, p.Size, p.D)
	case FilterMin:
		return MinFilter(ctx, src, p.Size)
	case FilterMax:
		return MaxFilter(ctx, src, p.Size)
	case FilterMedian:
		return MedianFilter(ctx, src, p.Size)
	case FilterMidpoint:
		return MidpointFilter(ctx, src, p.Size)
	case FilterGaussianSmoothing:
		return GaussianSmooth(ctx, src, p.Size, p.K, p.Sigma)
	case FilterLaplacian:
		return Laplacian(ctx, src, p.Mask, p.Process)
	case FilterHighBoost:
		return HighBoost(ctx, src, p.Blurred, p.BoostK)
	}
	return nil, invalidf("unknown filter method %d", int(method))
}
