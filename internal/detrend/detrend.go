// Package detrend removes local polynomial trends from profile segments and
// reports the residual variance.
//
// Every segment of a given scale is fitted against the same local abscissa,
// so a [Fitter] factorises the Vandermonde design matrix once and reuses the
// QR decomposition for every segment of that scale. The abscissa is mapped
// onto [−1, 1], which keeps the design well conditioned without changing the
// residuals.
package detrend

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/hurstlab/internal/fractal"
)

// constTolerance is the spread, relative to the segment's largest magnitude,
// below which a segment counts as numerically constant. There is no absolute
// floor, so rescaling a series never changes which segments are flat.
const constTolerance = 1e-12

// Fitter is not safe for concurrent use; give each worker its own.
type Fitter struct {
	scale  int
	order  int
	design *mat.Dense
	qr     mat.QR
	coef   *mat.VecDense
	trend  *mat.VecDense
}

// NewFitter prepares least-squares fits of the given polynomial order over
// segments of length scale.
func NewFitter(scale, order int) (*Fitter, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: negative polynomial order %d", fractal.ErrInvalidScale, order)
	}
	if scale < 2 || scale < order+2 {
		return nil, fmt.Errorf("%w: %d points cannot support an order %d fit", fractal.ErrInvalidScale, scale, order)
	}

	cols := order + 1
	data := make([]float64, scale*cols)
	for i := 0; i < scale; i++ {
		x := 2*float64(i)/float64(scale-1) - 1
		v := 1.0
		for j := 0; j < cols; j++ {
			data[i*cols+j] = v
			v *= x
		}
	}

	f := &Fitter{
		scale:  scale,
		order:  order,
		design: mat.NewDense(scale, cols, data),
		coef:   mat.NewVecDense(cols, nil),
		trend:  mat.NewVecDense(scale, nil),
	}
	f.qr.Factorize(f.design)
	return f, nil
}

func (f *Fitter) Scale() int { return f.scale }
func (f *Fitter) Order() int { return f.order }

// Residual returns the mean squared residual of values around their fitted
// polynomial trend. A numerically constant segment yields exactly 0.
func (f *Fitter) Residual(values []float64) (float64, error) {
	if len(values) != f.scale {
		return 0, fmt.Errorf("%w: segment of length %d for fitter of scale %d", fractal.ErrInvalidScale, len(values), f.scale)
	}
	if isConstant(values) {
		return 0, nil
	}

	y := mat.NewVecDense(len(values), values)
	if err := f.qr.SolveVecTo(f.coef, false, y); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return 0, fmt.Errorf("%w: ill-conditioned order %d fit (cond=%g)", fractal.ErrNumericalInstability, f.order, float64(cond))
		}
		return 0, fmt.Errorf("detrend: solve: %w", err)
	}
	f.trend.MulVec(f.design, f.coef)

	sum := 0.0
	for i, v := range values {
		r := v - f.trend.AtVec(i)
		sum += r * r
	}
	res := sum / float64(len(values))
	if math.IsNaN(res) || math.IsInf(res, 0) {
		return 0, fmt.Errorf("%w: non-finite residual variance", fractal.ErrNumericalInstability)
	}
	return res, nil
}

// Residual fits a single segment. Use a Fitter when detrending many segments
// of the same length.
func Residual(values []float64, order int) (float64, error) {
	f, err := NewFitter(len(values), order)
	if err != nil {
		return 0, err
	}
	return f.Residual(values)
}

func isConstant(values []float64) bool {
	lo, hi := values[0], values[0]
	maxAbs := math.Abs(values[0])
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	return hi-lo <= constTolerance*maxAbs
}
