package noise

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/rng"
)

const (
	DefaultMaxRetries = 4

	// eigenvalues below -eigenTolerance*max|λ| are treated as negative
	eigenTolerance = 1e-9
)

// Source supplies standard normal draws. *rng.Source implements it.
type Source interface {
	Normals(dst []float64)
}

// CovarianceFunc returns the autocovariance at lag k for Hurst index h.
type CovarianceFunc func(k int, h float64) float64

type Options struct {
	// MaxRetries bounds how many times the embedding size is doubled when
	// negative eigenvalues are found.
	MaxRetries int
	// Covariance overrides the fGn autocovariance. Nil means [Autocovariance].
	Covariance CovarianceFunc
}

func DefaultOptions() Options {
	return Options{MaxRetries: DefaultMaxRetries}
}

type Generator struct {
	opts Options
}

func NewGenerator(opts Options) *Generator {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Covariance == nil {
		opts.Covariance = Autocovariance
	}
	return &Generator{opts: opts}
}

// Generate draws n samples of unit-variance fGn with Hurst index h.
func Generate(n int, h float64, src Source) (fractal.Series, error) {
	return NewGenerator(DefaultOptions()).Generate(n, h, src)
}

// Synthesize is Generate with a fresh root source seeded by seed.
func Synthesize(n int, h float64, seed int64) (fractal.Series, error) {
	return Generate(n, h, rng.New(seed))
}

func (g *Generator) Generate(n int, h float64, src Source) (fractal.Series, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: length must be positive, got %d", fractal.ErrDomain, n)
	}
	if math.IsNaN(h) || h <= 0 || h >= 1 {
		return nil, fmt.Errorf("%w: hurst index must lie in (0, 1), got %v", fractal.ErrDomain, h)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", fractal.ErrDomain)
	}

	m := EmbeddingSize(n)
	var lambda []float64
	for attempt := 0; ; attempt++ {
		var ok bool
		lambda, ok = g.eigenvalues(m, h)
		if ok {
			break
		}
		if attempt == g.opts.MaxRetries {
			return nil, fmt.Errorf("%w: negative circulant eigenvalues for n=%d h=%v after %d retries (m=%d)",
				fractal.ErrNumericalInstability, n, h, g.opts.MaxRetries, m)
		}
		m *= 2
	}

	draws := make([]float64, 2*m)
	src.Normals(draws)

	z := make([]complex128, m)
	for k := range z {
		amp := math.Sqrt(float64(m) * lambda[k])
		z[k] = complex(amp*draws[2*k], amp*draws[2*k+1])
	}
	x := fft.IFFT(z)

	out := make(fractal.Series, n)
	for i := range out {
		out[i] = real(x[i])
	}
	if !out.IsValid() {
		return nil, fmt.Errorf("%w: non-finite sample in synthesized noise", fractal.ErrNumericalInstability)
	}

	if n > 1 {
		_, variance := stat.MeanVariance(out, nil)
		if variance > 0 {
			sd := math.Sqrt(variance)
			for i := range out {
				out[i] /= sd
			}
		}
	}

	return out, nil
}

// eigenvalues returns the spectrum of the size-m circulant embedding and
// whether it is nonnegative within tolerance. Tolerated negatives are
// clamped to zero.
func (g *Generator) eigenvalues(m int, h float64) ([]float64, bool) {
	row := make([]float64, m)
	for k := range row {
		lag := k
		if m-k < lag {
			lag = m - k
		}
		row[k] = g.opts.Covariance(lag, h)
	}

	spectrum := fft.FFTReal(row)
	lambda := make([]float64, m)
	maxAbs := 0.0
	for k := range lambda {
		lambda[k] = real(spectrum[k])
		if a := math.Abs(lambda[k]); a > maxAbs {
			maxAbs = a
		}
	}

	tol := eigenTolerance * maxAbs
	for k, v := range lambda {
		if math.IsNaN(v) || v < -tol {
			return nil, false
		}
		if v < 0 {
			lambda[k] = 0
		}
	}
	return lambda, true
}

// EmbeddingSize is the smallest power of two not below 2(n−1), and at least 2.
func EmbeddingSize(n int) int {
	m := 2
	for m < 2*(n-1) {
		m *= 2
	}
	return m
}
