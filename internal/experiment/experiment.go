// Package experiment runs validation scenarios: synthesize a series with a
// known exponent, analyse it, and compare the estimate with the expectation.
// Ensembles repeat a scenario over consecutive seeds; calibration sweeps the
// Hurst index.
package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
)

type Config struct {
	Source    string
	N         int
	Hurst     float64
	Seed      int64
	Scales    []int
	Moments   []float64
	PolyOrder int
	FitRange  fractal.FitRange
	// Q selects the moment order whose exponent is compared against the
	// expectation. It is added to Moments when missing.
	Q       float64
	Workers int
}

// Params returns the analysis parameters of the scenario.
func (c Config) Params() mfdfa.Params {
	moments := c.Moments
	found := false
	for _, q := range moments {
		if q == c.Q {
			found = true
			break
		}
	}
	if !found {
		moments = append(append([]float64(nil), moments...), c.Q)
	}
	return mfdfa.Params{
		Scales:    c.Scales,
		Moments:   moments,
		PolyOrder: c.PolyOrder,
		FitRange:  c.FitRange,
	}
}

type Result struct {
	Series    fractal.Series
	Analysis  *mfdfa.Result
	Expected  float64
	Estimated float64
}

func (r *Result) Error() float64 { return r.Estimated - r.Expected }

type Experiment struct {
	cfg    Config
	source Source
	log    *logrus.Entry
}

func New(cfg Config, registry *Registry, log *logrus.Entry) (*Experiment, error) {
	src, err := registry.GetSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Experiment{
		cfg:    cfg,
		source: src,
		log:    log.WithField("source", cfg.Source),
	}, nil
}

func (e *Experiment) Config() Config { return e.cfg }

// Run executes the scenario with the configured seed.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	return e.runSeed(ctx, e.cfg.Seed, e.cfg.Workers)
}

func (e *Experiment) runSeed(ctx context.Context, seed int64, workers int) (*Result, error) {
	series, err := e.source.Generate(e.cfg.N, e.cfg.Hurst, seed)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", e.cfg.Source, err)
	}

	res, err := mfdfa.Analyze(ctx, series, e.cfg.Params(), mfdfa.Options{
		Workers: workers,
		Log:     e.log.WithField("seed", seed),
	})
	if err != nil {
		return nil, err
	}

	h, ok := res.Exponents[e.cfg.Q]
	if !ok {
		err := res.ExponentErrors[e.cfg.Q]
		if err == nil {
			err = fractal.ErrInsufficientData
		}
		return nil, fmt.Errorf("seed %d q=%g: %w", seed, e.cfg.Q, err)
	}

	return &Result{
		Series:    series,
		Analysis:  res,
		Expected:  e.source.Expected(e.cfg.Hurst),
		Estimated: h,
	}, nil
}
