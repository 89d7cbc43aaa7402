package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/hurstlab/internal/experiment"
	"github.com/san-kum/hurstlab/internal/report"
)

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	expCfg := cfg.Experiment()
	log := logrus.WithFields(logrus.Fields{"hurst": expCfg.Hurst, "n": expCfg.N})

	exp, err := experiment.New(expCfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	res, err := experiment.NewEnsemble(exp, replicates, expCfg.Seed).
		WithWorkers(expCfg.Workers).
		Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(report.Header.Render("validation"))
	fmt.Println(report.KeyValue("source", expCfg.Source))
	fmt.Println(report.KeyValue("hurst", fmt.Sprintf("%.3f", expCfg.Hurst)))
	fmt.Println(report.KeyValue("samples", fmt.Sprint(expCfg.N)))
	fmt.Println(report.KeyValue("exponent", fmt.Sprintf("h(%g)", expCfg.Q)))
	fmt.Println()
	return report.Ensemble(os.Stdout, res)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &experiment.Sweep{
		Source:     cfg.Synth.Source,
		HurstMin:   hurstMin,
		HurstMax:   hurstMax,
		NumSteps:   sweepSteps,
		Replicates: replicates,
		SeedStart:  cfg.Synth.Seed,
	}
	if sweepFile != "" {
		sweep, err = experiment.LoadSweep(sweepFile)
		if err != nil {
			return fmt.Errorf("failed to load sweep: %w", err)
		}
	}

	log := logrus.WithField("cmd", "calibrate")
	results, err := experiment.RunSweep(cmd.Context(), sweep, cfg.Experiment(), experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	fmt.Println(report.Header.Render("calibration"))
	fmt.Println(report.KeyValue("source", cfg.Experiment().Source))
	fmt.Println(report.KeyValue("replicates", fmt.Sprint(sweep.Replicates)))
	fmt.Println()
	return report.Calibration(os.Stdout, results)
}
