package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/hurstlab/internal/report"
	"github.com/san-kum/hurstlab/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	return report.Runs(os.Stdout, runs)
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	lines := []string{
		report.KeyValue("kind", meta.Kind),
		report.KeyValue("origin", meta.Origin),
		report.KeyValue("time", meta.Timestamp.Local().Format("2006-01-02 15:04:05")),
		report.KeyValue("samples", fmt.Sprint(meta.N)),
	}
	if meta.Hurst > 0 {
		lines = append(lines,
			report.KeyValue("hurst", fmt.Sprintf("%.3f", meta.Hurst)),
			report.KeyValue("seed", fmt.Sprint(meta.Seed)))
	}
	if meta.Kind == storage.KindAnalysis {
		lines = append(lines,
			report.KeyValue("scales", fmt.Sprint(meta.Scales)),
			report.KeyValue("detrending order", fmt.Sprint(meta.PolyOrder)))
	}

	fmt.Println(report.Header.Render("run " + meta.ID))
	fmt.Println(report.Panel.Render(strings.Join(lines, "\n")))

	if meta.Kind != storage.KindAnalysis {
		return nil
	}

	fmt.Println()
	if err := report.Exponents(os.Stdout, meta.Exponents); err != nil {
		return err
	}

	if len(meta.PairErrors) > 0 {
		fmt.Println()
		fmt.Println(report.Warn.Render(fmt.Sprintf("%d failed pairs", len(meta.PairErrors))))
		for _, e := range meta.PairErrors {
			fmt.Println(report.Subtle.Render("  " + e))
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(meta.ID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(report.KeyValue("run", meta.ID))
	fmt.Println(report.KeyValue("origin", meta.Origin))
	fmt.Println(report.KeyValue("samples", fmt.Sprint(len(series))))
	fmt.Println()
	fmt.Println(report.SeriesPlot(series, plotWidth, plotHeight/2+1, "series"))
	fmt.Println()
	fmt.Println(report.Sparkline(series.Cumsum(), plotWidth))
	fmt.Println(report.Subtle.Render("cumulative sum"))

	records, err := st.LoadFluctuation(meta.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	plot, err := report.LogLogPlot(records, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(plot)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSONStdout(data)
	}
	return storage.ExportJSON(outFile, data)
}
