package noise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hurstlab/internal/fractal"
)

// Autocovariance is the exact fGn autocovariance at lag k.
func Autocovariance(k int, h float64) float64 {
	fk := math.Abs(float64(k))
	e := 2 * h
	return 0.5 * (math.Pow(fk+1, e) - 2*math.Pow(fk, e) + math.Pow(math.Abs(fk-1), e))
}

// Autocorrelation returns the sample autocorrelation of series at lag,
// normalised as acf[k] = Σ u_i u_{i+k} / ((n−k)·var).
func Autocorrelation(series fractal.Series, lag int) (float64, error) {
	n := len(series)
	if lag < 0 || lag >= n {
		return 0, fmt.Errorf("%w: lag %d for series of length %d", fractal.ErrInsufficientData, lag, n)
	}

	mean := stat.Mean(series, nil)
	variance := 0.0
	for _, v := range series {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	if variance == 0 {
		return 0, fmt.Errorf("%w: constant series has no autocorrelation", fractal.ErrDomain)
	}

	sum := 0.0
	for i := 0; i+lag < n; i++ {
		sum += (series[i] - mean) * (series[i+lag] - mean)
	}
	return sum / (float64(n-lag) * variance), nil
}
