package config

import "sort"

var Presets = map[string]*Config{
	// classic monofractal DFA-1
	"dfa": {
		Synth: SynthConfig{Source: "fgn", N: 10000, Hurst: 0.7, Seed: 42},
		Analysis: AnalysisConfig{
			Scales:    ScaleConfig{Min: 16, Count: 20},
			Moments:   []float64{2},
			PolyOrder: 1,
			Q:         2,
		},
	},
	"mfdfa": {
		Synth: SynthConfig{Source: "fgn", N: 16384, Hurst: 0.7, Seed: 42},
		Analysis: AnalysisConfig{
			Scales:    ScaleConfig{Min: 16, Count: 24},
			Moments:   []float64{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5},
			PolyOrder: 2,
			Q:         2,
		},
	},
	"noise": {
		Synth: SynthConfig{Source: "fgn", N: 10000, Hurst: 0.7, Seed: 42},
		Analysis: AnalysisConfig{
			Scales:    ScaleConfig{Min: 5, Max: 200, Count: 20},
			Moments:   []float64{2},
			PolyOrder: 1,
			Q:         2,
		},
	},
	"motion": {
		Synth: SynthConfig{Source: "fbm", N: 10000, Hurst: 0.7, Seed: 42},
		Analysis: AnalysisConfig{
			Scales:    ScaleConfig{Min: 5, Max: 200, Count: 20},
			Moments:   []float64{2},
			PolyOrder: 2,
			Q:         2,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
