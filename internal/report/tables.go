package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/san-kum/hurstlab/internal/experiment"
	"github.com/san-kum/hurstlab/internal/scaling"
	"github.com/san-kum/hurstlab/internal/storage"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func Exponents(w io.Writer, exps []storage.Exponent) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Q\tH(Q)\tINTERCEPT\tR²\tNOTE")
	for _, e := range exps {
		if e.Error != "" {
			fmt.Fprintf(tw, "%g\t-\t-\t-\t%s\n", e.Q, e.Error)
			continue
		}
		fmt.Fprintf(tw, "%g\t%.4f\t%.4f\t%.4f\t\n", e.Q, e.H, e.Intercept, e.RSquared)
	}
	return tw.Flush()
}

// Fluctuation prints F_q(s) with one row per scale and one column per q.
func Fluctuation(w io.Writer, records []storage.Record) error {
	curves := storage.Curves(records)
	qs := make([]float64, 0, len(curves))
	for q := range curves {
		qs = append(qs, q)
	}
	sort.Float64s(qs)

	scaleSet := make(map[int]bool)
	values := make(map[float64]map[int]float64, len(qs))
	for q, c := range curves {
		values[q] = make(map[int]float64, len(c))
		for _, r := range c {
			scaleSet[r.Scale] = true
			values[q][r.Scale] = r.F
		}
	}
	scales := make([]int, 0, len(scaleSet))
	for s := range scaleSet {
		scales = append(scales, s)
	}
	sort.Ints(scales)

	tw := newTable(w)
	fmt.Fprint(tw, "SCALE")
	for _, q := range qs {
		fmt.Fprintf(tw, "\tq=%g", q)
	}
	fmt.Fprintln(tw)

	for _, s := range scales {
		fmt.Fprint(tw, strconv.Itoa(s))
		for _, q := range qs {
			if f, ok := values[q][s]; ok {
				fmt.Fprintf(tw, "\t%.6g", f)
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func Spectrum(w io.Writer, pts []scaling.SpectrumPoint) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Q\tH\tTAU\tALPHA\tF(ALPHA)")
	for _, p := range pts {
		fmt.Fprintf(tw, "%g\t%.4f\t%.4f\t%.4f\t%.4f\n", p.Q, p.H, p.Tau, p.Alpha, p.F)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, KeyValue("width Δα", fmt.Sprintf("%.4f", scaling.Width(pts))))
	return err
}

func Runs(w io.Writer, runs []storage.RunMetadata) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tKIND\tORIGIN\tTIME\tN\tH\tSCALES\tQ")
	for _, run := range runs {
		h := "-"
		if run.Hurst > 0 {
			h = fmt.Sprintf("%.3f", run.Hurst)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			run.ID[:min(8, len(run.ID))],
			run.Kind,
			run.Origin,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.N,
			h,
			len(run.Scales),
			len(run.Moments),
		)
	}
	return tw.Flush()
}

func Ensemble(w io.Writer, res *experiment.EnsembleResult) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SEED\tESTIMATE")
	for i, seed := range res.Seeds {
		fmt.Fprintf(tw, "%d\t%.4f\n", seed, res.Estimates[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	summary := fmt.Sprintf("%.4f ± %.4f (expected %.4f, bias %+.4f)", res.Mean, res.StdDev, res.Expected, res.Bias())
	_, err := fmt.Fprintln(w, Label.Render("mean:")+" "+Deviation(res.Bias(), summary))
	return err
}

func Calibration(w io.Writer, results []experiment.SweepResult) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "H\tEXPECTED\tMEAN\tSTD\tBIAS")
	for _, r := range results {
		fmt.Fprintf(tw, "%.3f\t%.4f\t%.4f\t%.4f\t%s\n",
			r.Hurst, r.Expected, r.Mean, r.StdDev,
			Deviation(r.Bias(), fmt.Sprintf("%+.4f", r.Bias())))
	}
	return tw.Flush()
}
