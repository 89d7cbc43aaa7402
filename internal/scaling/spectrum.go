package scaling

import (
	"fmt"
	"sort"

	"github.com/san-kum/hurstlab/internal/fractal"
)

// SpectrumPoint is one q of the multifractal spectrum: mass exponent
// τ(q) = q·h(q) − 1, singularity strength α = dτ/dq and its dimension
// f(α) = q·α − τ.
type SpectrumPoint struct {
	Q     float64 `json:"q"`
	H     float64 `json:"h"`
	Tau   float64 `json:"tau"`
	Alpha float64 `json:"alpha"`
	F     float64 `json:"f_alpha"`
}

// Spectrum computes the singularity spectrum from generalized Hurst
// exponents. The derivative dτ/dq uses central differences in the interior
// and one-sided differences at both ends. Points are returned in ascending q.
func Spectrum(qs, hs []float64) ([]SpectrumPoint, error) {
	if len(qs) != len(hs) {
		return nil, fmt.Errorf("%w: %d moment orders but %d exponents", fractal.ErrInsufficientData, len(qs), len(hs))
	}

	pts := make([]SpectrumPoint, len(qs))
	for i := range qs {
		pts[i] = SpectrumPoint{Q: qs[i], H: hs[i], Tau: qs[i]*hs[i] - 1}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Q < pts[j].Q })

	for i := 1; i < len(pts); i++ {
		if pts[i].Q == pts[i-1].Q {
			return nil, fmt.Errorf("%w: duplicate moment order %g", fractal.ErrDomain, pts[i].Q)
		}
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: spectrum needs at least 2 moment orders, got %d", fractal.ErrInsufficientData, len(pts))
	}

	last := len(pts) - 1
	for i := range pts {
		lo, hi := i-1, i+1
		if i == 0 {
			lo = 0
		}
		if i == last {
			hi = last
		}
		pts[i].Alpha = (pts[hi].Tau - pts[lo].Tau) / (pts[hi].Q - pts[lo].Q)
		pts[i].F = pts[i].Q*pts[i].Alpha - pts[i].Tau
	}
	return pts, nil
}

// Width returns max(α) − min(α), the usual scalar measure of
// multifractality. A monofractal has width 0.
func Width(pts []SpectrumPoint) float64 {
	if len(pts) == 0 {
		return 0
	}
	lo, hi := pts[0].Alpha, pts[0].Alpha
	for _, p := range pts[1:] {
		if p.Alpha < lo {
			lo = p.Alpha
		}
		if p.Alpha > hi {
			hi = p.Alpha
		}
	}
	return hi - lo
}
