package fractal

import (
	"math"
	"sort"
)

// LogScales returns up to n integer scales spaced logarithmically between lo
// and hi inclusive. Values are rounded to the nearest integer and duplicates
// produced by rounding at the small end are dropped, so fewer than n scales
// may be returned.
func LogScales(lo, hi, n int) []int {
	if n <= 0 || lo <= 0 || hi < lo {
		return nil
	}
	if n == 1 || lo == hi {
		return []int{lo}
	}

	logLo := math.Log10(float64(lo))
	step := (math.Log10(float64(hi)) - logLo) / float64(n-1)

	scales := make([]int, 0, n)
	last := 0
	for i := 0; i < n; i++ {
		s := int(math.Round(math.Pow(10, logLo+float64(i)*step)))
		if s == last {
			continue
		}
		scales = append(scales, s)
		last = s
	}
	return scales
}

// LinearScales returns the scales lo, lo+step, ... up to hi inclusive.
func LinearScales(lo, hi, step int) []int {
	if step <= 0 || lo <= 0 || hi < lo {
		return nil
	}
	scales := make([]int, 0, (hi-lo)/step+1)
	for s := lo; s <= hi; s += step {
		scales = append(scales, s)
	}
	return scales
}

// MomentRange returns the moment orders lo, lo+step, ... up to hi inclusive.
// Each order is rounded to 12 decimals so grids that cross zero hit q = 0
// exactly and take its geometric-mean branch.
func MomentRange(lo, hi, step float64) []float64 {
	if !(step > 0) || hi < lo || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	qs := make([]float64, n)
	for i := range qs {
		q := math.Round((lo+float64(i)*step)*1e12) / 1e12
		if math.Abs(q) < 1e-9*step {
			q = 0
		}
		qs[i] = q
	}
	return qs
}

// SortedUnique returns a sorted copy of scales with duplicates removed.
func SortedUnique(scales []int) []int {
	out := make([]int, len(scales))
	copy(out, scales)
	sort.Ints(out)

	n := 0
	for i, s := range out {
		if i > 0 && s == out[n-1] {
			continue
		}
		out[n] = s
		n++
	}
	return out[:n]
}
