package windowing

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Hann represents a Hann window function
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window. Spectral analysis uses the periodic
// (symmetric=false) form so the window tiles exactly at the FFT length.
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      size,
		symmetric: symmetric,
	}
	h.generate()
	return h
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)
	if h.size == 1 {
		h.coefficients[0] = 1
		return
	}

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}

	for i := range h.size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}

// Apply windows a signal into a new slice. Shorter signals are zero-padded to
// the window size first; longer signals are rejected.
func (h *Hann) Apply(signal []float64) ([]float64, error) {
	if len(signal) > h.size {
		return nil, fmt.Errorf("signal length (%d) exceeds window size (%d)", len(signal), h.size)
	}

	windowed := make([]float64, h.size)
	copy(windowed, signal)
	vecmath.MulBlockInPlace(windowed, h.coefficients)

	return windowed, nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}
