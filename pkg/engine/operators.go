package engine

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"github.com/Fepozopo/imgbench/pkg/imgproc"
	"github.com/Fepozopo/imgbench/pkg/pixel"
)

func src(index int) sourceRef { return sourceRef{role: "source", index: index} }

// LoadOriginal decodes an interleaved RGBA buffer and makes it the only
// record of the history.
func (e *Engine) LoadOriginal(ctx context.Context, data []byte, width, height int) (Record, error) {
	return e.runOperator(ctx, operation{
		name:    "original-load",
		kind:    RecordOriginal,
		params:  LoadParams{Width: width, Height: height},
		replace: true,
		run: func(ctx context.Context, _ []*pixel.Grid) (*pixel.Grid, error) {
			if err := e.checkSize(width, height); err != nil {
				return nil, err
			}
			g, _, err := pixel.FromBytes(data, width, height)
			return g, err
		},
	})
}

// LoadImage is LoadOriginal for an already decoded image.
func (e *Engine) LoadImage(ctx context.Context, img image.Image) (Record, error) {
	var params LoadParams
	if img != nil {
		params = LoadParams{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	}
	return e.runOperator(ctx, operation{
		name:    "original-load",
		kind:    RecordOriginal,
		params:  params,
		replace: true,
		run: func(ctx context.Context, _ []*pixel.Grid) (*pixel.Grid, error) {
			if img == nil {
				return nil, errors.Wrap(imgproc.ErrInvalidParameter, "image is nil")
			}
			if err := e.checkSize(params.Width, params.Height); err != nil {
				return nil, err
			}
			g, _, err := pixel.FromImage(img)
			return g, err
		},
	})
}

// Resample changes the spatial resolution of the source record.
func (e *Engine) Resample(ctx context.Context, method imgproc.ResampleMethod, source, width, height int) (Record, error) {
	return e.runOperator(ctx, operation{
		name:    "resample",
		kind:    RecordResample,
		sources: []sourceRef{src(source)},
		params:  ResampleParams{Method: method, Width: width, Height: height},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			if err := e.checkSize(width, height); err != nil {
				return nil, err
			}
			return imgproc.Resample(ctx, method, in[0], width, height)
		},
	})
}

// GrayLevelResolution reduces the source to 2^bit gray levels.
func (e *Engine) GrayLevelResolution(ctx context.Context, source, bit int) (Record, error) {
	return e.runOperator(ctx, operation{
		name:      "gray-level-resolution",
		kind:      RecordGrayLevel,
		sources:   []sourceRef{src(source)},
		params:    GrayLevelParams{Bit: bit},
		bitDepth:  bit,
		forceGray: true,
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			return imgproc.GrayLevelResolution(ctx, in[0], bit)
		},
	})
}

// BitPlaneRemoval keeps only the bit planes set in mask.
func (e *Engine) BitPlaneRemoval(ctx context.Context, source, mask int) (Record, error) {
	return e.runOperator(ctx, operation{
		name:    "bit-plane-removal",
		kind:    RecordBitPlane,
		sources: []sourceRef{src(source)},
		params:  BitPlaneParams{Mask: mask},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			return imgproc.RemoveBitPlanes(ctx, in[0], mask)
		},
	})
}

// HistogramEqualization equalizes the whole source when windowSize is 0,
// and each pixel over its windowSize neighborhood otherwise.
func (e *Engine) HistogramEqualization(ctx context.Context, source, windowSize int) (Record, error) {
	return e.runOperator(ctx, operation{
		name:    "histogram-equalization",
		kind:    RecordEqualization,
		sources: []sourceRef{src(source)},
		params:  EqualizationParams{WindowSize: windowSize},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			if windowSize == 0 {
				return imgproc.EqualizeGlobal(ctx, in[0], image.Rectangle{})
			}
			return imgproc.EqualizeLocal(ctx, in[0], windowSize)
		},
	})
}

// HistogramEqualizationRegion equalizes region of the source using that
// region's histogram; the rest of the image is copied.
func (e *Engine) HistogramEqualizationRegion(ctx context.Context, source int, region image.Rectangle) (Record, error) {
	return e.runOperator(ctx, operation{
		name:    "histogram-equalization",
		kind:    RecordEqualization,
		sources: []sourceRef{src(source)},
		params:  EqualizationParams{Region: region},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			return imgproc.EqualizeGlobal(ctx, in[0], region)
		},
	})
}

// SpatialFilter applies one of the neighborhood filters. High-boost also
// reads the record at req.Blurred.
func (e *Engine) SpatialFilter(ctx context.Context, method imgproc.FilterMethod, source int, req FilterRequest) (Record, error) {
	sources := []sourceRef{src(source)}
	if method == imgproc.FilterHighBoost {
		sources = append(sources, sourceRef{role: "blurred", index: req.Blurred})
	}
	return e.runOperator(ctx, operation{
		name:    method.String(),
		kind:    RecordFilter,
		sources: sources,
		params:  FilterParams{Method: method, FilterRequest: req},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			p := imgproc.FilterParams{
				Size:    req.Size,
				K:       req.K,
				Sigma:   req.Sigma,
				Order:   req.Order,
				D:       req.D,
				Mask:    req.Mask,
				Process: req.Process,
				BoostK:  req.BoostK,
			}
			if len(in) > 1 {
				p.Blurred = in[1]
			}
			return imgproc.Filter(ctx, method, in[0], p)
		},
	})
}

// NoiseInjection adds Gaussian noise to the source. A zero req.Seed is
// replaced by a fresh seed, which is kept in the record's params.
func (e *Engine) NoiseInjection(ctx context.Context, source int, req NoiseRequest) (Record, error) {
	if req.Seed == 0 {
		req.Seed = e.nextNoiseSeed()
	}
	return e.runOperator(ctx, operation{
		name:    "noise-injection",
		kind:    RecordNoise,
		sources: []sourceRef{src(source)},
		params:  NoiseParams{NoiseRequest: req},
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			return imgproc.GaussianNoise(ctx, in[0], req.Mean, req.Sigma, req.K, req.Seed)
		},
	})
}

// BinaryOp combines the source with the record at other. Scaling ignores
// other.
func (e *Engine) BinaryOp(ctx context.Context, op imgproc.BinaryOp, source, other int) (Record, error) {
	sources := []sourceRef{src(source)}
	params := BinaryParams{Op: op, Other: NoSource}
	if op.NeedsOperand() {
		role := "addend"
		if op == imgproc.OpSubtract {
			role = "minuend"
		}
		sources = append(sources, sourceRef{role: role, index: other})
		params.Other = other
	}
	return e.runOperator(ctx, operation{
		name:    op.String(),
		kind:    RecordBinaryOp,
		sources: sources,
		params:  params,
		run: func(ctx context.Context, in []*pixel.Grid) (*pixel.Grid, error) {
			var b *pixel.Grid
			if len(in) > 1 {
				b = in[1]
			}
			return op.Apply(ctx, in[0], b)
		},
	})
}

// Histogram returns the per-channel histogram of the record at index i.
func (e *Engine) Histogram(i int) (imgproc.Histogram, error) {
	r, err := e.history.Get(i)
	if err != nil {
		return imgproc.Histogram{}, err
	}
	return imgproc.ComputeHistogram(r.Grid)
}
