package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/storage"
)

var curveColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
}

// SeriesPlot draws a series against its sample index.
func SeriesPlot(series fractal.Series, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// LogLogPlot draws log10 F_q(s) against log10 s for every q in records.
// Curves are resampled onto a uniform log-scale grid of width points, so the
// plot is not re-interpolated by asciigraph.
func LogLogPlot(records []storage.Record, width, height int) (string, error) {
	curves := storage.Curves(records)
	if len(curves) == 0 {
		return "", fmt.Errorf("no fluctuation values to plot: %w", fractal.ErrInsufficientData)
	}

	qs := make([]float64, 0, len(curves))
	for q := range curves {
		qs = append(qs, q)
	}
	sort.Float64s(qs)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range curves {
		lo = math.Min(lo, math.Log10(float64(c[0].Scale)))
		hi = math.Max(hi, math.Log10(float64(c[len(c)-1].Scale)))
	}

	data := make([][]float64, 0, len(qs))
	legends := make([]string, 0, len(qs))
	colors := make([]asciigraph.AnsiColor, 0, len(qs))
	for i, q := range qs {
		xs, ys := logPoints(curves[q])
		if len(xs) == 0 {
			continue
		}
		data = append(data, resample(xs, ys, lo, hi, width))
		legends = append(legends, fmt.Sprintf("q=%g", q))
		colors = append(colors, curveColors[i%len(curveColors)])
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no positive fluctuation values: %w", fractal.ErrInsufficientData)
	}

	caption := fmt.Sprintf("log10 F_q(s), log10 s from %.2f to %.2f", lo, hi)
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	), nil
}

func logPoints(curve []storage.Record) ([]float64, []float64) {
	xs := make([]float64, 0, len(curve))
	ys := make([]float64, 0, len(curve))
	for _, r := range curve {
		if r.F <= 0 || r.Scale <= 0 {
			continue
		}
		xs = append(xs, math.Log10(float64(r.Scale)))
		ys = append(ys, math.Log10(r.F))
	}
	return xs, ys
}

// resample linearly interpolates (xs, ys) onto n points spanning [lo, hi].
// Points outside the curve's own range are NaN, which asciigraph skips.
func resample(xs, ys []float64, lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	j := 0
	for i := range out {
		x := lo + float64(i)*step
		if len(xs) == 1 {
			out[i] = math.NaN()
			if math.Abs(x-xs[0]) <= step/2 {
				out[i] = ys[0]
			}
			continue
		}
		if x < xs[0]-1e-12 || x > xs[len(xs)-1]+1e-12 {
			out[i] = math.NaN()
			continue
		}
		for j < len(xs)-2 && x > xs[j+1] {
			j++
		}
		t := (x - xs[j]) / (xs[j+1] - xs[j])
		out[i] = ys[j] + t*(ys[j+1]-ys[j])
	}
	return out
}
