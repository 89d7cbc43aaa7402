package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/hurstlab/internal/config"
	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
	"github.com/san-kum/hurstlab/internal/report"
	"github.com/san-kum/hurstlab/internal/storage"
	"github.com/san-kum/hurstlab/internal/tui"
)

// loadInput reads the series named by the positional argument or --run.
// The returned origin describes where it came from.
func loadInput(args []string) (fractal.Series, string, error) {
	if runID != "" {
		if len(args) > 0 {
			return nil, "", fmt.Errorf("give either a csv file or --run, not both")
		}
		st := storage.New(dataDir)
		meta, err := st.Load(runID)
		if err != nil {
			return nil, "", err
		}
		series, err := st.LoadSeries(meta.ID)
		if err != nil {
			return nil, "", err
		}
		return series, "run:" + meta.ID, nil
	}

	if len(args) == 0 {
		return nil, "", fmt.Errorf("missing csv file (or --run)")
	}

	var r io.Reader = os.Stdin
	origin := "stdin"
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		r = f
		origin = filepath.Base(args[0])
	}

	series, err := storage.ReadSeriesCSV(r, column)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", origin, err)
	}
	return series, origin, nil
}

func analyzeSeries(ctx context.Context, series fractal.Series, params mfdfa.Params, cfg *config.Config, log *logrus.Entry) (*mfdfa.Result, error) {
	opts := cfg.Options()
	opts.Log = log

	if !showProg {
		return mfdfa.Analyze(ctx, series, params, opts)
	}

	var res *mfdfa.Result
	err := tui.Run(ctx, fmt.Sprintf("scanning %d scales", len(params.Scales)), func(ctx context.Context, progress func(done, total int)) error {
		opts.Progress = progress
		var err error
		res, err = mfdfa.Analyze(ctx, series, params, opts)
		return err
	})
	return res, err
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	series, origin, err := loadInput(args)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{"input": origin, "n": len(series)})
	params := cfg.Params(len(series))
	log.WithField("scales", params.Scales).Debug("analysis parameters")

	res, err := analyzeSeries(cmd.Context(), series, params, cfg, log)
	if err != nil {
		return err
	}

	meta := storage.NewMetadata(storage.KindAnalysis, origin, len(series), res)

	fmt.Println(report.Header.Render("hurstlab analysis"))
	fmt.Println(report.KeyValue("input", origin))
	fmt.Println(report.KeyValue("samples", fmt.Sprint(len(series))))
	fmt.Println(report.KeyValue("scales used", fmt.Sprintf("%d of %d", len(res.ScalesUsed), len(params.Scales))))
	fmt.Println(report.KeyValue("detrending order", fmt.Sprint(params.PolyOrder)))
	fmt.Println()

	if showRecords {
		if err := report.Fluctuation(os.Stdout, storage.Records(res)); err != nil {
			return err
		}
		fmt.Println(report.Separator(60))
	}

	if err := report.Exponents(os.Stdout, meta.Exponents); err != nil {
		return err
	}

	if len(res.PairErrors) > 0 {
		log.Warnf("%d (q, scale) pairs failed; see --log-level debug", len(res.PairErrors))
	}

	if showPlot {
		plot, err := report.LogLogPlot(storage.Records(res), 80, 15)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(plot)
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(meta, series, res)
		if err != nil {
			return err
		}
		log.WithField("run", id).Info("run saved")
	}

	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if qStep <= 0 || qMax < qMin {
		return fmt.Errorf("invalid moment range [%g, %g] step %g", qMin, qMax, qStep)
	}

	series, origin, err := loadInput(args)
	if err != nil {
		return err
	}

	params := cfg.Params(len(series))
	if !cmd.Flags().Changed("q") {
		params.Moments = fractal.MomentRange(qMin, qMax, qStep)
	}

	log := logrus.WithFields(logrus.Fields{"input": origin, "n": len(series)})
	res, err := analyzeSeries(cmd.Context(), series, params, cfg, log)
	if err != nil {
		return err
	}

	pts, err := res.Spectrum()
	if err != nil {
		return err
	}

	fmt.Println(report.Header.Render("singularity spectrum"))
	fmt.Println(report.KeyValue("input", origin))
	fmt.Println()
	return report.Spectrum(os.Stdout, pts)
}
