package fractal

import (
	"fmt"
	"math"
)

type Series []float64

func (s Series) Clone() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}

func (s Series) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the series precondition shared by every analysis entry
// point: at least one sample and only finite values.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty series", ErrDomain)
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value %v at index %d", ErrDomain, v, i)
		}
	}
	return nil
}

func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// Cumsum returns the running sum of the series. Applied to a noise it yields
// the corresponding motion.
func (s Series) Cumsum() Series {
	out := make(Series, len(s))
	acc := 0.0
	for i, v := range s {
		acc += v
		out[i] = acc
	}
	return out
}

// Key addresses one fluctuation value F_q(s).
type Key struct {
	Q     float64
	Scale int
}

func (k Key) String() string {
	return fmt.Sprintf("(q=%g, s=%d)", k.Q, k.Scale)
}

// FitRange is a half-open window [Start, End) of indices into a scale
// sequence. The zero value selects every index.
type FitRange struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// IsZero reports whether r selects the whole sequence.
func (r FitRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// Bounds resolves r against a sequence of length n. A zero End means n.
func (r FitRange) Bounds(n int) (int, int, error) {
	start, end := r.Start, r.End
	if end == 0 {
		end = n
	}
	if start < 0 || end > n || start > end {
		return 0, 0, fmt.Errorf("%w: fit range [%d, %d) outside %d scales", ErrInsufficientData, r.Start, r.End, n)
	}
	return start, end, nil
}
