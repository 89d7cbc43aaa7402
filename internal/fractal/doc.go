// Package fractal provides the core types shared by the fluctuation analysis
// and noise synthesis packages.
//
//   - [Series]: finite, immutable sequence of real samples
//   - [Key]: (moment order, scale) pair addressing one fluctuation value
//   - [FitRange]: contiguous index window used for exponent fitting
//   - [LogScales]: logarithmically spaced integer scales
//
// # Errors
//
// All packages report failures through the sentinel errors declared here
// ([ErrDomain], [ErrInvalidScale], [ErrInsufficientData],
// [ErrNumericalInstability]) so callers can match them with errors.Is
// regardless of where in the pipeline they were produced.
//
// # Example
//
//	s := fractal.Series(values)
//	if err := s.Validate(); err != nil {
//	    return err
//	}
//	scales := fractal.LogScales(5, 200, 20)
package fractal
