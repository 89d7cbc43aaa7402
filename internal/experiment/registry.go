package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/noise"
)

// Source produces a validation series with a known scaling exponent.
type Source struct {
	Generate func(n int, h float64, seed int64) (fractal.Series, error)
	// Expected returns the DFA exponent the series should exhibit.
	Expected func(h float64) float64
}

type Registry struct {
	sources map[string]Source
}

func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}

	r.sources["fgn"] = Source{
		Generate: noise.Synthesize,
		Expected: func(h float64) float64 { return h },
	}
	r.sources["fbm"] = Source{
		Generate: func(n int, h float64, seed int64) (fractal.Series, error) {
			x, err := noise.Synthesize(n, h, seed)
			if err != nil {
				return nil, err
			}
			return x.Cumsum(), nil
		},
		Expected: func(h float64) float64 { return h + 1 },
	}
	r.sources["white"] = Source{
		Generate: func(n int, _ float64, seed int64) (fractal.Series, error) {
			return noise.Synthesize(n, 0.5, seed)
		},
		Expected: func(float64) float64 { return 0.5 },
	}

	return r
}

func (r *Registry) Register(name string, src Source) {
	r.sources[name] = src
}

func (r *Registry) GetSource(name string) (Source, error) {
	src, ok := r.sources[name]
	if !ok {
		return Source{}, fmt.Errorf("unknown source: %s (available: %v)", name, r.ListSources())
	}
	return src, nil
}

func (r *Registry) ListSources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
