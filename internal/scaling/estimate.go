// Package scaling extracts scaling exponents from fluctuation functions.
//
// [Estimate] is an ordinary least-squares fit of log F_q(s) against log s
// over a caller-chosen window of scales; its slope is the generalized Hurst
// exponent h(q). [Spectrum] derives the multifractal singularity spectrum
// from a set of h(q) values.
package scaling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hurstlab/internal/fractal"
)

// Line is a least-squares fit in log–log space.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	Points    int     `json:"points"`
}

// At evaluates the fitted power law at scale s.
func (l Line) At(s float64) float64 {
	return math.Exp(l.Intercept) * math.Pow(s, l.Slope)
}

// Estimate returns the slope of log f against log lags within r.
func Estimate(lags []int, f []float64, r fractal.FitRange) (float64, error) {
	line, err := Fit(lags, f, r)
	if err != nil {
		return 0, err
	}
	return line.Slope, nil
}

// Fit performs the log–log regression behind Estimate and also reports the
// intercept and coefficient of determination.
func Fit(lags []int, f []float64, r fractal.FitRange) (Line, error) {
	if len(lags) != len(f) {
		return Line{}, fmt.Errorf("%w: %d lags but %d fluctuation values", fractal.ErrInsufficientData, len(lags), len(f))
	}
	start, end, err := r.Bounds(len(lags))
	if err != nil {
		return Line{}, err
	}
	if end-start < 2 {
		return Line{}, fmt.Errorf("%w: %d points in fit range, need at least 2", fractal.ErrInsufficientData, end-start)
	}

	x := make([]float64, 0, end-start)
	y := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		if lags[i] <= 0 {
			return Line{}, fmt.Errorf("%w: non-positive lag %d", fractal.ErrDomain, lags[i])
		}
		if !(f[i] > 0) || math.IsInf(f[i], 1) {
			return Line{}, fmt.Errorf("%w: fluctuation %v at lag %d cannot be log-transformed", fractal.ErrInsufficientData, f[i], lags[i])
		}
		x = append(x, math.Log(float64(lags[i])))
		y = append(y, math.Log(f[i]))
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Line{}, fmt.Errorf("%w: fit range spans a single distinct lag", fractal.ErrInsufficientData)
	}

	return Line{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(x, y, nil, alpha, beta),
		Points:    len(x),
	}, nil
}
