// Package noise synthesizes fractional Gaussian noise (fGn) by circulant
// embedding.
//
// The autocovariance of unit-variance fGn with Hurst index H is
//
//	γ(k) = ½(|k+1|^{2H} − 2|k|^{2H} + |k−1|^{2H})
//
// and the generator reproduces it exactly for lags 0..N−1. The covariance
// row is embedded into a circulant of size M (the smallest power of two not
// below 2(N−1)), whose eigenvalues come from one real FFT. Gaussian
// coefficients scaled by √(M·λ) are pushed through an inverse FFT and the
// real part of the first N samples is returned, renormalised to unit sample
// variance.
//
// If any eigenvalue is negative beyond tolerance, M is doubled and the
// decomposition retried up to [Options.MaxRetries] times before the call fails
// with fractal.ErrNumericalInstability. For fGn the power-of-two embedding is
// nonnegative for every H in (0, 1), so the retry path only triggers for
// caller-supplied covariances.
//
// Same seed, same output: [Synthesize] is bit-for-bit reproducible.
package noise
