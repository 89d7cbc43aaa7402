package fractal

import (
	"errors"
	"fmt"
)

// Domain errors for analysis and synthesis operations.
var (
	// ErrDomain indicates an input outside the mathematical domain of an
	// operation: empty or non-finite series, Hurst index outside (0, 1),
	// non-finite moment order.
	ErrDomain = errors.New("fractal: input outside valid domain")

	// ErrInvalidScale indicates a scale too small for the polynomial order or
	// too large for the series length.
	ErrInvalidScale = errors.New("fractal: invalid scale")

	// ErrInsufficientData indicates fewer points than a fit requires.
	ErrInsufficientData = errors.New("fractal: insufficient data")

	// ErrNumericalInstability indicates a computation that could not produce a
	// finite, unbiased result.
	ErrNumericalInstability = errors.New("fractal: numerical instability")
)

// PairError wraps an error with the (q, scale) pair it was produced for.
type PairError struct {
	Q       float64
	Scale   int
	Wrapped error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("q=%g scale=%d: %v", e.Q, e.Scale, e.Wrapped)
}

func (e *PairError) Unwrap() error {
	return e.Wrapped
}
