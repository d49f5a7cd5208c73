package spectral

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/fft"
)

// DBFloor is added to linear magnitudes before taking the logarithm so a
// silent bin maps to a finite level (-200 dB) instead of -Inf.
const DBFloor = 1e-10

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp.
// go-dsp handles non-power-of-2 lengths.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// Magnitude returns |X[k]| for the first numBins bins of spectrum.
func Magnitude(spectrum []complex128, numBins int) []float64 {
	numBins = min(numBins, len(spectrum))
	if numBins <= 0 {
		return []float64{}
	}

	re := make([]float64, numBins)
	im := make([]float64, numBins)
	for i := range numBins {
		re[i] = real(spectrum[i])
		im[i] = imag(spectrum[i])
	}

	out := make([]float64, numBins)
	vecmath.Magnitude(out, re, im)
	return out
}

// HalfSpectrumDB computes the one-sided magnitude spectrum of an already
// windowed frame in dBFS: bins [0, N/2), each normalized by N/2 and converted
// with 20*log10(mag + DBFloor).
func (f *FFT) HalfSpectrumDB(windowed []float64) []float64 {
	n := len(windowed)
	if n == 0 {
		return []float64{}
	}

	half := n / 2
	mags := Magnitude(f.Compute(windowed), half)

	norm := float64(n) / 2.0
	db := make([]float64, len(mags))
	for i, m := range mags {
		db[i] = 20 * math.Log10(m/norm+DBFloor)
	}

	return db
}

// BinFrequency returns the center frequency of bin k for an n-point FFT
func BinFrequency(k int, sampleRate, n int) float64 {
	return float64(k) * float64(sampleRate) / float64(n)
}
