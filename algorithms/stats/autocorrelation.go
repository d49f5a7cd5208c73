package stats

import (
	"github.com/RyanBlaney/sonido-partials/algorithms/common"
	"gonum.org/v1/gonum/dsp/fourier"
)

// AutoCorrelation computes the normalized autocorrelation of a signal through
// the Wiener-Khinchin relation: the inverse transform of the power spectrum.
//
// References:
// - Rabiner, L., Schafer, R. (1978). "Digital Processing of Speech Signals"
// - Oppenheim, A.V., Schafer, R.W. (2010). "Discrete-Time Signal Processing"
type AutoCorrelation struct {
	subtractMean bool
}

// NewAutoCorrelation creates an autocorrelation calculator that removes the
// signal mean before correlating
func NewAutoCorrelation() *AutoCorrelation {
	return &AutoCorrelation{subtractMean: true}
}

// NewAutoCorrelationRaw creates an autocorrelation calculator that correlates
// the signal as is
func NewAutoCorrelationRaw() *AutoCorrelation {
	return &AutoCorrelation{subtractMean: false}
}

// Compute returns r[k] for lags 0..len(signal)-1, normalized so r[0] = 1.
// A constant (or, without mean removal, all-zero) signal has no defined
// normalization and yields all zeros.
func (ac *AutoCorrelation) Compute(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return []float64{}
	}

	x := make([]float64, common.NextPowerOfTwo(2*n))
	copy(x, signal)
	if ac.subtractMean {
		mean := common.Mean(signal)
		for i := range n {
			x[i] -= mean
		}
	}

	// zero-padding to >= 2n keeps the circular correlation free of wrap-around
	fft := fourier.NewFFT(len(x))
	coeffs := fft.Coefficients(nil, x)
	for i, c := range coeffs {
		coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	raw := fft.Sequence(nil, coeffs)

	acf := make([]float64, n)
	if raw[0] <= 1e-12*float64(len(x)) {
		return acf
	}
	for k := range n {
		acf[k] = raw[k] / raw[0]
	}

	return acf
}
