package mfdfa

import (
	"fmt"
	"math"

	"github.com/san-kum/hurstlab/internal/detrend"
	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/profile"
)

// Variances returns the residual variance of every forward and backward
// segment of p at scale s.
func Variances(p profile.Profile, s, order int) ([]float64, error) {
	segs, err := profile.Segments(p, s, order)
	if err != nil {
		return nil, err
	}
	fitter, err := detrend.NewFitter(s, order)
	if err != nil {
		return nil, err
	}

	vars := make([]float64, len(segs))
	for i, seg := range segs {
		v, err := fitter.Residual(seg.Values(p))
		if err != nil {
			return nil, fmt.Errorf("%s segment at %d: %w", seg.Direction, seg.Start, err)
		}
		vars[i] = v
	}
	return vars, nil
}

const qZero = 1e-9

// Aggregate folds segment variances into the q-th order fluctuation F_q(s).
func Aggregate(vars []float64, q float64) (float64, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, fmt.Errorf("%w: moment order %v", fractal.ErrDomain, q)
	}
	if len(vars) == 0 {
		return 0, fmt.Errorf("%w: no segments to aggregate", fractal.ErrInsufficientData)
	}
	n := float64(len(vars))

	var f float64
	// below qZero the power mean has lost all precision and its limit, the
	// geometric mean, is exact to within rounding
	if math.Abs(q) < qZero {
		// ln 0 = -Inf, so one flat segment gives F_0 = 0
		sum := 0.0
		for _, v := range vars {
			sum += 0.5 * math.Log(v)
		}
		f = math.Exp(sum / n)
	} else {
		sum := 0.0
		for _, v := range vars {
			sum += math.Pow(v, q/2)
		}
		f = math.Pow(sum/n, 1/q)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: F_%g is %v", fractal.ErrNumericalInstability, q, f)
	}
	return f, nil
}

// Fluctuation computes F_q(s) for a single (q, s) pair.
func Fluctuation(p profile.Profile, s int, q float64, order int) (float64, error) {
	vars, err := Variances(p, s, order)
	if err != nil {
		return 0, err
	}
	return Aggregate(vars, q)
}
