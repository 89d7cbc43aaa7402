// Package profile builds the cumulative profile of a series and partitions it
// into detrending windows.
//
// Segments are index ranges into the profile buffer; [Segment.Values] hands
// out sub-slices, so segmenting a scale costs O(N/s) and never copies
// samples.
package profile

import (
	"fmt"

	"github.com/san-kum/hurstlab/internal/fractal"
)

// Profile is the cumulative sum of mean-centred deviations of a series.
type Profile []float64

// Build computes Profile[i] = Σ_{j≤i} (x_j − mean(x)).
func Build(series fractal.Series) (Profile, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	mean := series.Mean()
	p := make(Profile, len(series))
	acc := 0.0
	for i, v := range series {
		acc += v - mean
		p[i] = acc
	}
	return p, nil
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Segment is a contiguous window [Start, Start+Len) of a profile.
type Segment struct {
	Direction Direction
	Start     int
	Len       int
}

func (s Segment) End() int { return s.Start + s.Len }

// Values returns the window as a view into p.
func (s Segment) Values(p Profile) []float64 {
	return p[s.Start:s.End():s.End()]
}

// ValidateScale checks that scale s can be detrended with a polynomial of the
// given order on a series of length n.
func ValidateScale(n, s, order int) error {
	if order < 0 {
		return fmt.Errorf("%w: negative polynomial order %d", fractal.ErrInvalidScale, order)
	}
	if s < 2 || s < order+2 {
		return fmt.Errorf("%w: scale %d below minimum %d for order %d", fractal.ErrInvalidScale, s, max(2, order+2), order)
	}
	if 4*s > n {
		return fmt.Errorf("%w: scale %d exceeds n/4 for n=%d", fractal.ErrInvalidScale, s, n)
	}
	return nil
}

// Segments partitions p into floor(N/s) forward windows starting at index 0
// and the same number of backward windows ending at index N−1. The backward
// pass picks up the samples a forward-only partition drops when s does not
// divide N; when it does, both passes cover the same windows.
func Segments(p Profile, s, order int) ([]Segment, error) {
	n := len(p)
	if err := ValidateScale(n, s, order); err != nil {
		return nil, err
	}

	count := n / s
	segs := make([]Segment, 0, 2*count)
	for k := 0; k < count; k++ {
		segs = append(segs, Segment{Direction: Forward, Start: k * s, Len: s})
	}
	for k := 0; k < count; k++ {
		segs = append(segs, Segment{Direction: Backward, Start: n - (k+1)*s, Len: s})
	}
	return segs, nil
}
