package experiment

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Ensemble repeats an experiment over consecutive seeds starting at
// seedStart.
type Ensemble struct {
	exp       *Experiment
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(exp *Experiment, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{exp: exp, numRuns: numRuns, seedStart: seedStart}
}

// WithWorkers bounds the number of replicates analysed concurrently.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	e.workers = n
	return e
}

type EnsembleResult struct {
	Seeds     []int64
	Estimates []float64
	Expected  float64
	Mean      float64
	StdDev    float64
}

func (r *EnsembleResult) Bias() float64 { return r.Mean - r.Expected }

func (e *Ensemble) Run(ctx context.Context) (*EnsembleResult, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}

	workers := e.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := &EnsembleResult{
		Seeds:     make([]int64, e.numRuns),
		Estimates: make([]float64, e.numRuns),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		seed := e.seedStart + int64(idx)
		out.Seeds[idx] = seed
		g.Go(func() error {
			// each replicate scans its scales serially; the ensemble
			// already saturates the workers
			res, err := e.exp.runSeed(gctx, seed, 1)
			if err != nil {
				return err
			}
			out.Estimates[idx] = res.Estimated
			if idx == 0 {
				out.Expected = res.Expected
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.numRuns > 1 {
		out.Mean, out.StdDev = stat.MeanStdDev(out.Estimates, nil)
	} else {
		out.Mean = out.Estimates[0]
	}

	e.exp.log.WithFields(logrus.Fields{
		"runs":     e.numRuns,
		"mean":     out.Mean,
		"std":      out.StdDev,
		"expected": out.Expected,
	}).Debug("ensemble complete")

	return out, nil
}
