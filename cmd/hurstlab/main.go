package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/hurstlab/internal/config"
)

var (
	dataDir  string
	logLevel string

	// series synthesis
	source string
	length int
	hurst  float64
	seed   int64

	// analysis
	configFile string
	preset     string
	scales     []int
	minScale   int
	maxScale   int
	numScales  int
	moments    []float64
	moment     float64
	polyOrder  int
	fitStart   int
	fitEnd     int
	workers    int
	failFast   bool

	// input and output
	column      string
	runID       string
	outFile     string
	saveRun     bool
	showPlot    bool
	showProg    bool
	checkACF    bool
	replicates  int
	hurstMin    float64
	hurstMax    float64
	sweepSteps  int
	sweepFile   string
	qMin, qMax  float64
	qStep       float64
	plotWidth   int
	plotHeight  int
	maxACFLag   int
	showRecords bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hurstlab",
		Short:         "multifractal detrended fluctuation analysis lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hurstlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "synthesize fractional Gaussian noise or its cumulative sum",
		Args:  cobra.NoArgs,
		RunE:  runSynth,
	}
	addSynthFlags(synthCmd)
	synthCmd.Flags().StringVarP(&outFile, "out", "o", "", "output csv file (default stdout)")
	synthCmd.Flags().BoolVar(&checkACF, "check", false, "compare the sample autocorrelation with theory")
	synthCmd.Flags().IntVar(&maxACFLag, "lags", 5, "number of lags checked by --check")
	synthCmd.Flags().BoolVar(&saveRun, "save", false, "store the series as a run")
	synthCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the series")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [csv_file]",
		Short: "estimate F_q(s) and h(q) of a series",
		Long:  "Analyze a CSV column (use - for stdin) or a stored run (--run).",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	addInputFlags(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&saveRun, "save", false, "store the series and analysis as a run")
	analyzeCmd.Flags().BoolVar(&showPlot, "plot", false, "plot log F_q(s) against log s")
	analyzeCmd.Flags().BoolVar(&showProg, "progress", false, "show a progress bar while scanning scales")
	analyzeCmd.Flags().BoolVar(&showRecords, "table", true, "print the F_q(s) table")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the estimator on synthetic series with a known exponent",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
	addSynthFlags(validateCmd)
	addAnalysisFlags(validateCmd)
	validateCmd.Flags().IntVar(&replicates, "runs", 8, "number of seeds in the ensemble")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "sweep the Hurst index and report the estimator bias",
		Args:  cobra.NoArgs,
		RunE:  runCalibrate,
	}
	addSynthFlags(calibrateCmd)
	addAnalysisFlags(calibrateCmd)
	calibrateCmd.Flags().IntVar(&replicates, "runs", 4, "replicates per Hurst index")
	calibrateCmd.Flags().Float64Var(&hurstMin, "h-min", 0.1, "smallest Hurst index")
	calibrateCmd.Flags().Float64Var(&hurstMax, "h-max", 0.9, "largest Hurst index")
	calibrateCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of Hurst indices")
	calibrateCmd.Flags().StringVar(&sweepFile, "sweep", "", "sweep definition file (yaml)")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [csv_file]",
		Short: "compute the multifractal singularity spectrum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpectrum,
	}
	addInputFlags(spectrumCmd)
	addAnalysisFlags(spectrumCmd)
	spectrumCmd.Flags().Float64Var(&qMin, "q-min", -5, "smallest moment order")
	spectrumCmd.Flags().Float64Var(&qMax, "q-max", 5, "largest moment order")
	spectrumCmd.Flags().Float64Var(&qStep, "q-step", 1, "moment order step")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list analysis presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-6s source=%s n=%d order=%d q=%v\n",
					name, p.Synth.Source, p.Synth.N, p.Analysis.PolyOrder, p.Analysis.Moments)
			}
			return nil
		},
	}

	rootCmd.AddCommand(synthCmd, analyzeCmd, validateCmd, calibrateCmd, spectrumCmd,
		listCmd, showCmd, plotCmd, exportJSONCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: lvl < logrus.DebugLevel,
		FullTimestamp:    true,
	})
	return nil
}

func addSynthFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&source, "source", config.DefaultSource, "series source (fgn, fbm, white)")
	cmd.Flags().IntVar(&length, "n", config.DefaultLength, "series length")
	cmd.Flags().Float64Var(&hurst, "hurst", config.DefaultHurst, "Hurst index in (0, 1)")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&column, "column", "", "csv column name or index (default last)")
	cmd.Flags().StringVar(&runID, "run", "", "analyze a stored run instead of a file")
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntSliceVar(&scales, "scales", nil, "explicit scale list")
	cmd.Flags().IntVar(&minScale, "min-scale", config.DefaultMinScale, "smallest scale")
	cmd.Flags().IntVar(&maxScale, "max-scale", 0, "largest scale (default n/4)")
	cmd.Flags().IntVar(&numScales, "num-scales", config.DefaultScaleStep, "number of log-spaced scales")
	cmd.Flags().Float64SliceVar(&moments, "q", []float64{config.DefaultQ}, "moment orders")
	cmd.Flags().Float64Var(&moment, "moment", config.DefaultQ, "moment order of the reported exponent")
	cmd.Flags().IntVar(&polyOrder, "order", config.DefaultPolyOrder, "detrending polynomial order")
	cmd.Flags().IntVar(&fitStart, "fit-start", 0, "first scale index of the fit")
	cmd.Flags().IntVar(&fitEnd, "fit-end", 0, "scale index past the end of the fit (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel scale workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort on the first failing (q, scale) pair")
}

// resolveConfig layers the preset, the config file and explicitly set flags
// over the defaults, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("source") {
		cfg.Synth.Source = source
	}
	if changed("n") {
		cfg.Synth.N = length
	}
	if changed("hurst") {
		cfg.Synth.Hurst = hurst
	}
	if changed("seed") {
		cfg.Synth.Seed = seed
	}
	if changed("scales") {
		cfg.Analysis.Scales.List = scales
	}
	if changed("min-scale") {
		cfg.Analysis.Scales.Min = minScale
	}
	if changed("max-scale") {
		cfg.Analysis.Scales.Max = maxScale
	}
	if changed("num-scales") {
		cfg.Analysis.Scales.Count = numScales
	}
	if changed("q") {
		cfg.Analysis.Moments = moments
	}
	if changed("moment") {
		cfg.Analysis.Q = moment
	}
	if changed("order") {
		cfg.Analysis.PolyOrder = polyOrder
	}
	if changed("fit-start") {
		cfg.Analysis.FitRange.Start = fitStart
	}
	if changed("fit-end") {
		cfg.Analysis.FitRange.End = fitEnd
	}
	if changed("workers") {
		cfg.Analysis.Workers = workers
	}
	if changed("fail-fast") {
		cfg.Analysis.FailFast = failFast
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
