package mfdfa

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/profile"
	"github.com/san-kum/hurstlab/internal/scaling"
)

type Params struct {
	Scales    []int
	Moments   []float64
	PolyOrder int
	// FitRange indexes into Result.ScalesUsed.
	FitRange fractal.FitRange
}

type Options struct {
	// Workers bounds the number of scales processed concurrently.
	// Zero means runtime.NumCPU().
	Workers int
	// FailFast aborts the sweep on the first pair or exponent error instead
	// of recording it in the result.
	FailFast bool
	Log      *logrus.Entry
	// Progress, if set, is called after each scale finishes. Calls may come
	// from several goroutines but never concurrently.
	Progress func(done, total int)
}

type Result struct {
	Params      Params
	ScalesUsed  []int
	Fluctuation map[fractal.Key]float64
	Exponents   map[float64]float64
	Fits        map[float64]scaling.Line
	PairErrors  []*fractal.PairError
	// ExponentErrors holds the reason h(q) could not be fitted, per q.
	ExponentErrors map[float64]error
}

// F returns F_q(s) and whether it was computed.
func (r *Result) F(q float64, s int) (float64, bool) {
	v, ok := r.Fluctuation[fractal.Key{Q: q, Scale: s}]
	return v, ok
}

// Curve returns F_q(s) aligned with ScalesUsed. Missing pairs are NaN.
func (r *Result) Curve(q float64) []float64 {
	out := make([]float64, len(r.ScalesUsed))
	for i, s := range r.ScalesUsed {
		v, ok := r.F(q, s)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Moments returns the moment orders that produced an exponent, ascending.
func (r *Result) Moments() []float64 {
	qs := make([]float64, 0, len(r.Exponents))
	for q := range r.Exponents {
		qs = append(qs, q)
	}
	sort.Float64s(qs)
	return qs
}

// Spectrum derives the singularity spectrum from the fitted exponents.
func (r *Result) Spectrum() ([]scaling.SpectrumPoint, error) {
	qs := r.Moments()
	hs := make([]float64, len(qs))
	for i, q := range qs {
		hs[i] = r.Exponents[q]
	}
	return scaling.Spectrum(qs, hs)
}

var discard = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}()

// Analyze runs the full MFDFA sweep over every (q, s) pair of params.
//
// Series precondition violations and invalid parameters abort immediately.
// Otherwise failures local to a pair are collected in Result.PairErrors and
// the remaining pairs are still computed, unless opts.FailFast is set. Scales
// that fail validation are left out of Result.ScalesUsed.
func Analyze(ctx context.Context, series fractal.Series, params Params, opts Options) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	p, err := profile.Build(series)
	if err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = discard
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	scales := dedupe(params.Scales)
	moments := params.Moments

	res := &Result{
		Params:         params,
		Fluctuation:    make(map[fractal.Key]float64, len(scales)*len(moments)),
		Exponents:      make(map[float64]float64, len(moments)),
		Fits:           make(map[float64]scaling.Line, len(moments)),
		ExponentErrors: make(map[float64]error),
	}
	valid := make([]bool, len(scales))

	var mu sync.Mutex
	done := 0

	record := func(q float64, s int, err error) error {
		pe := &fractal.PairError{Q: q, Scale: s, Wrapped: err}
		log.WithFields(logrus.Fields{"q": q, "scale": s, "err": err}).Warn("fluctuation pair failed")
		mu.Lock()
		res.PairErrors = append(res.PairErrors, pe)
		mu.Unlock()
		if opts.FailFast {
			return pe
		}
		return nil
	}

	finish := func() {
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(scales))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, s := range scales {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			vars, err := Variances(p, s, params.PolyOrder)
			if err != nil {
				for _, q := range moments {
					if ferr := record(q, s, err); ferr != nil {
						return ferr
					}
				}
				mu.Lock()
				finish()
				mu.Unlock()
				return nil
			}

			fq := make(map[float64]float64, len(moments))
			for _, q := range moments {
				f, err := Aggregate(vars, q)
				if err != nil {
					if ferr := record(q, s, err); ferr != nil {
						return ferr
					}
					continue
				}
				fq[q] = f
			}
			log.WithFields(logrus.Fields{"scale": s, "segments": len(vars)}).Debug("scale done")

			mu.Lock()
			defer mu.Unlock()
			valid[idx] = true
			for q, f := range fq {
				res.Fluctuation[fractal.Key{Q: q, Scale: s}] = f
			}
			finish()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for idx, s := range scales {
		if valid[idx] {
			res.ScalesUsed = append(res.ScalesUsed, s)
		}
	}
	sort.Slice(res.PairErrors, func(i, j int) bool {
		a, b := res.PairErrors[i], res.PairErrors[j]
		if a.Scale != b.Scale {
			return a.Scale < b.Scale
		}
		return a.Q < b.Q
	})

	for _, q := range moments {
		line, err := scaling.Fit(res.ScalesUsed, res.Curve(q), params.FitRange)
		if err != nil {
			err = fmt.Errorf("h(%g): %w", q, err)
			if opts.FailFast {
				return nil, err
			}
			log.WithFields(logrus.Fields{"q": q, "err": err}).Warn("scaling exponent not fitted")
			res.ExponentErrors[q] = err
			continue
		}
		res.Fits[q] = line
		res.Exponents[q] = line.Slope
	}

	return res, nil
}

func validateParams(params Params) error {
	if len(params.Scales) == 0 {
		return fmt.Errorf("%w: no scales requested", fractal.ErrInsufficientData)
	}
	if len(params.Moments) == 0 {
		return fmt.Errorf("%w: no moment orders requested", fractal.ErrInsufficientData)
	}
	if params.PolyOrder < 0 {
		return fmt.Errorf("%w: negative polynomial order %d", fractal.ErrInvalidScale, params.PolyOrder)
	}
	seen := make(map[float64]bool, len(params.Moments))
	for _, q := range params.Moments {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("%w: moment order %v", fractal.ErrDomain, q)
		}
		if seen[q] {
			return fmt.Errorf("%w: duplicate moment order %g", fractal.ErrDomain, q)
		}
		seen[q] = true
	}
	return nil
}

// dedupe drops repeated scales and keeps the caller's order.
func dedupe(scales []int) []int {
	seen := make(map[int]bool, len(scales))
	out := make([]int, 0, len(scales))
	for _, s := range scales {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
