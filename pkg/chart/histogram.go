// Package chart renders per-channel histograms as images.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Fepozopo/imgbench/pkg/imgproc"
	"github.com/Fepozopo/imgbench/pkg/pixel"
)

// Default output size in points.
const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 3 * vg.Inch
)

var channelColors = []struct {
	name string
	c    pixel.Channel
	col  color.RGBA
}{
	{"red", pixel.R, color.RGBA{R: 220, A: 255}},
	{"green", pixel.G, color.RGBA{G: 170, A: 255}},
	{"blue", pixel.B, color.RGBA{B: 220, A: 255}},
}

// HistogramPlot builds an overlaid line plot of the three channel
// histograms. Grayscale histograms collapse to a single gray line.
func HistogramPlot(h imgproc.Histogram, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Level"
	p.Y.Label.Text = "Pixels"
	p.X.Min = 0
	p.X.Max = imgproc.Levels - 1
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if h.R == h.G && h.G == h.B {
		line, err := channelLine(&h.R, color.RGBA{R: 80, G: 80, B: 80, A: 255})
		if err != nil {
			return nil, err
		}
		p.Add(line)
		p.Legend.Add("gray", line)
		return p, nil
	}
	for _, cc := range channelColors {
		line, err := channelLine(h.Channel(cc.c), cc.col)
		if err != nil {
			return nil, err
		}
		p.Add(line)
		p.Legend.Add(cc.name, line)
	}
	return p, nil
}

func channelLine(counts *[imgproc.Levels]int, col color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, imgproc.Levels)
	for k, n := range counts {
		pts[k].X = float64(k)
		pts[k].Y = float64(n)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "building histogram line")
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = col
	return line, nil
}

// WriteHistogram renders h to w. format is one of the gonum plot formats
// ("png", "svg", "pdf", ...). Zero sizes fall back to the defaults.
func WriteHistogram(w io.Writer, h imgproc.Histogram, title, format string, width, height vg.Length) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	p, err := HistogramPlot(h, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "rendering %s histogram", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing histogram")
	}
	return nil
}

// Summary formats min, max and mean level per channel on one line.
func Summary(h imgproc.Histogram) string {
	var b strings.Builder
	for i, cc := range channelColors {
		if i > 0 {
			b.WriteString("  ")
		}
		counts := h.Channel(cc.c)
		lo, hi, sum := -1, -1, 0
		for k, n := range counts {
			if n == 0 {
				continue
			}
			if lo < 0 {
				lo = k
			}
			hi = k
			sum += k * n
		}
		mean := 0.0
		if h.Total > 0 {
			mean = float64(sum) / float64(h.Total)
		}
		fmt.Fprintf(&b, "%s[min=%d max=%d mean=%.1f]", cc.name[:1], lo, hi, mean)
	}
	return b.String()
}
