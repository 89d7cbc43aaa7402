package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/hurstlab/internal/config"
)

func newTestCommand() *cobra.Command {
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSynthFlags(cmd)
	addAnalysisFlags(cmd)
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestCommand())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.N != config.DefaultLength || cfg.Analysis.PolyOrder != config.DefaultPolyOrder {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cmd := newTestCommand()
	preset = "motion"
	if err := cmd.Flags().Set("order", "3"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("q", "-2,2"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.Source != "fbm" {
		t.Errorf("preset source lost, got %s", cfg.Synth.Source)
	}
	if cfg.Analysis.PolyOrder != 3 {
		t.Errorf("expected order 3, got %d", cfg.Analysis.PolyOrder)
	}
	if len(cfg.Analysis.Moments) != 2 || cfg.Analysis.Moments[0] != -2 {
		t.Errorf("expected moments [-2 2], got %v", cfg.Analysis.Moments)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("synth:\n  hurst: 0.25\nanalysis:\n  order: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand()
	configFile = path
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.Hurst != 0.25 || cfg.Analysis.PolyOrder != 2 {
		t.Errorf("config file not applied: %+v", cfg)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	cmd := newTestCommand()
	preset = "nope"
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newTestCommand()
	if err := cmd.Flags().Set("hurst", "1.5"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected validation error")
	}
}
