// Package mfdfa implements multifractal detrended fluctuation analysis.
//
// For a series x of length N the analysis builds the profile, splits it into
// 2·floor(N/s) windows per scale s (forward and backward passes), removes a
// local polynomial trend of the chosen order from each window and aggregates
// the residual variances F²(ν, s) into
//
//	F_q(s) = { mean_ν [F²(ν, s)]^{q/2} }^{1/q}     q ≠ 0
//	F_0(s) = exp{ mean_ν ½·ln F²(ν, s) }           q = 0
//
// The q = 0 branch is the geometric mean and is kept separate on purpose. A
// window with zero residual variance is a legitimate outcome: it drives
// F_0(s) (and F_q(s) for q < 0) to 0 instead of raising an error.
//
// [Analyze] sweeps every (q, s) pair in parallel and fits h(q) as the
// log–log slope of F_q(s) over a window of scales. With q = 2 and order 1 the
// analysis is classical DFA.
//
// # Example
//
//	res, err := mfdfa.Analyze(ctx, series, mfdfa.Params{
//	    Scales:    fractal.LogScales(5, 200, 20),
//	    Moments:   []float64{-2, 0, 2},
//	    PolyOrder: 1,
//	}, mfdfa.Options{})
//	h2 := res.Exponents[2]
package mfdfa
