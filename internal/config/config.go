package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hurstlab/internal/experiment"
	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
)

const (
	DefaultSource    = "fgn"
	DefaultLength    = 10000
	DefaultHurst     = 0.7
	DefaultSeed      = 42
	DefaultMinScale  = 16
	DefaultScaleStep = 20
	DefaultPolyOrder = 1
	DefaultQ         = 2.0
)

type Config struct {
	Synth    SynthConfig    `yaml:"synth"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type SynthConfig struct {
	Source string  `yaml:"source"`
	N      int     `yaml:"n"`
	Hurst  float64 `yaml:"hurst"`
	Seed   int64   `yaml:"seed"`
}

type AnalysisConfig struct {
	Scales    ScaleConfig      `yaml:"scales"`
	Moments   []float64        `yaml:"moments"`
	PolyOrder int              `yaml:"order"`
	FitRange  fractal.FitRange `yaml:"fit_range"`
	Workers   int              `yaml:"workers"`
	FailFast  bool             `yaml:"fail_fast"`
	// Q is the moment order reported as the headline exponent.
	Q float64 `yaml:"q"`
}

// ScaleConfig describes the scale grid either as an explicit list or as a
// log-spaced range. Max 0 means N/4 of the analysed series.
type ScaleConfig struct {
	List  []int `yaml:"list,omitempty"`
	Min   int   `yaml:"min"`
	Max   int   `yaml:"max"`
	Count int   `yaml:"count"`
}

func DefaultConfig() *Config {
	return &Config{
		Synth: SynthConfig{
			Source: DefaultSource,
			N:      DefaultLength,
			Hurst:  DefaultHurst,
			Seed:   DefaultSeed,
		},
		Analysis: AnalysisConfig{
			Scales:    ScaleConfig{Min: DefaultMinScale, Count: DefaultScaleStep},
			Moments:   []float64{DefaultQ},
			PolyOrder: DefaultPolyOrder,
			Q:         DefaultQ,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Analysis.Moments = append([]float64(nil), c.Analysis.Moments...)
	out.Analysis.Scales.List = append([]int(nil), c.Analysis.Scales.List...)
	return &out
}

func (c *Config) Validate() error {
	if c.Synth.N < 1 {
		return fmt.Errorf("synth.n must be positive, got %d", c.Synth.N)
	}
	if !(c.Synth.Hurst > 0 && c.Synth.Hurst < 1) {
		return fmt.Errorf("synth.hurst must lie in (0, 1), got %g", c.Synth.Hurst)
	}
	a := c.Analysis
	if len(a.Moments) == 0 {
		return fmt.Errorf("analysis.moments is empty")
	}
	if a.PolyOrder < 0 {
		return fmt.Errorf("analysis.order must be non-negative, got %d", a.PolyOrder)
	}
	if len(a.Scales.List) == 0 {
		if a.Scales.Min < 2 {
			return fmt.Errorf("analysis.scales.min must be at least 2, got %d", a.Scales.Min)
		}
		if a.Scales.Count < 1 {
			return fmt.Errorf("analysis.scales.count must be positive, got %d", a.Scales.Count)
		}
		if a.Scales.Max != 0 && a.Scales.Max < a.Scales.Min {
			return fmt.Errorf("analysis.scales.max %d below min %d", a.Scales.Max, a.Scales.Min)
		}
	}
	return nil
}

// Resolve returns the scale grid for a series of length n.
func (s ScaleConfig) Resolve(n int) []int {
	if len(s.List) > 0 {
		return append([]int(nil), s.List...)
	}
	hi := s.Max
	if hi == 0 {
		hi = n / 4
	}
	if hi < s.Min {
		return []int{s.Min}
	}
	return fractal.LogScales(s.Min, hi, s.Count)
}

// Params returns the analysis parameters for a series of length n.
func (c *Config) Params(n int) mfdfa.Params {
	return mfdfa.Params{
		Scales:    c.Analysis.Scales.Resolve(n),
		Moments:   append([]float64(nil), c.Analysis.Moments...),
		PolyOrder: c.Analysis.PolyOrder,
		FitRange:  c.Analysis.FitRange,
	}
}

func (c *Config) Options() mfdfa.Options {
	return mfdfa.Options{
		Workers:  c.Analysis.Workers,
		FailFast: c.Analysis.FailFast,
	}
}

// Experiment returns the validation scenario described by the synth and
// analysis sections.
func (c *Config) Experiment() experiment.Config {
	p := c.Params(c.Synth.N)
	return experiment.Config{
		Source:    c.Synth.Source,
		N:         c.Synth.N,
		Hurst:     c.Synth.Hurst,
		Seed:      c.Synth.Seed,
		Scales:    p.Scales,
		Moments:   p.Moments,
		PolyOrder: p.PolyOrder,
		FitRange:  p.FitRange,
		Q:         c.Analysis.Q,
		Workers:   c.Analysis.Workers,
	}
}
