package engine

import (
	"fmt"
	"image"
	"strings"

	"github.com/Fepozopo/imgbench/pkg/imgproc"
)

// Params describes the arguments an operator was invoked with.
type Params interface {
	fmt.Stringer
}

// LoadParams records the size of a loaded original.
type LoadParams struct {
	Width, Height int
}

func (p LoadParams) String() string { return fmt.Sprintf("%dx%d", p.Width, p.Height) }

// ResampleParams records a resample invocation.
type ResampleParams struct {
	Method        imgproc.ResampleMethod
	Width, Height int
}

func (p ResampleParams) String() string {
	return fmt.Sprintf("method=%s size=%dx%d", p.Method, p.Width, p.Height)
}

// GrayLevelParams records the target bit depth.
type GrayLevelParams struct {
	Bit int
}

func (p GrayLevelParams) String() string { return fmt.Sprintf("bit=%d", p.Bit) }

// BitPlaneParams records the kept bit planes.
type BitPlaneParams struct {
	Mask int
}

func (p BitPlaneParams) String() string { return fmt.Sprintf("mask=%08b", p.Mask) }

// EqualizationParams records a histogram equalization. WindowSize 0 means
// global; Region is only meaningful for global equalization.
type EqualizationParams struct {
	WindowSize int
	Region     image.Rectangle
}

func (p EqualizationParams) String() string {
	if p.WindowSize > 0 {
		return fmt.Sprintf("local size=%d", p.WindowSize)
	}
	if p.Region.Empty() {
		return "global"
	}
	return fmt.Sprintf("global region=%v", p.Region)
}

// FilterRequest carries the method-specific arguments of SpatialFilter.
// Only the fields relevant to the chosen method are used.
type FilterRequest struct {
	Size    int
	K       float64
	Sigma   float64
	Order   float64
	D       int
	Mask    imgproc.MaskMode
	Process imgproc.ProcessMode
	// Blurred is the history index of the blurred image for high-boost.
	Blurred int
	BoostK  float64
}

// FilterParams records a spatial filter invocation.
type FilterParams struct {
	Method imgproc.FilterMethod
	FilterRequest
}

func (p FilterParams) String() string {
	var b strings.Builder
	b.WriteString(p.Method.String())
	switch p.Method {
	case imgproc.FilterLaplacian:
		fmt.Fprintf(&b, " mask=%s process=%s", p.Mask, p.Process)
	case imgproc.FilterHighBoost:
		fmt.Fprintf(&b, " blurred=%d k=%g", p.Blurred, p.BoostK)
	default:
		fmt.Fprintf(&b, " size=%d", p.Size)
	}
	switch p.Method {
	case imgproc.FilterGaussianSmoothing:
		fmt.Fprintf(&b, " K=%g sigma=%g", p.K, p.Sigma)
	case imgproc.FilterContraharmonicMean:
		fmt.Fprintf(&b, " order=%g", p.Order)
	case imgproc.FilterAlphaTrimmedMean:
		fmt.Fprintf(&b, " d=%d", p.D)
	}
	return b.String()
}

// NoiseRequest carries the arguments of NoiseInjection. Seed 0 lets the
// engine pick one; the chosen seed is recorded in NoiseParams.
type NoiseRequest struct {
	Mean, Sigma, K float64
	Seed           int64
}

// NoiseParams records a noise injection, including the seed used.
type NoiseParams struct {
	NoiseRequest
}

func (p NoiseParams) String() string {
	return fmt.Sprintf("mean=%g sigma=%g k=%g seed=%d", p.Mean, p.Sigma, p.K, p.Seed)
}

// BinaryParams records a binary operation. Other is NoSource for scaling.
type BinaryParams struct {
	Op    imgproc.BinaryOp
	Other int
}

func (p BinaryParams) String() string {
	if p.Other == NoSource {
		return p.Op.String()
	}
	return fmt.Sprintf("%s other=%d", p.Op, p.Other)
}
