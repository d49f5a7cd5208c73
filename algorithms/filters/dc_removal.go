package filters

import (
	"fmt"
	"math"
)

// DCRemoval is a one-pole, one-zero DC blocker:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	pole float64 // R, 0 < R < 1
}

// NewDCRemoval creates a blocker with a -3 dB point near cutoffHz.
// The pole follows R = 1 - 2*pi*fc/fs.
func NewDCRemoval(sampleRate int, cutoffHz float64) (*DCRemoval, error) {
	if sampleRate <= 0 || cutoffHz <= 0 {
		return nil, fmt.Errorf("dc removal: sample rate %d and cutoff %g Hz must be positive", sampleRate, cutoffHz)
	}

	pole := 1 - 2*math.Pi*cutoffHz/float64(sampleRate)
	if pole <= 0 || pole >= 1 {
		return nil, fmt.Errorf("dc removal: cutoff %g Hz is too high for %d Hz", cutoffHz, sampleRate)
	}

	return &DCRemoval{pole: pole}, nil
}

// Pole returns R
func (dc *DCRemoval) Pole() float64 {
	return dc.pole
}

// Process filters signal into a new slice. The filter starts from rest.
func (dc *DCRemoval) Process(signal []float64) []float64 {
	out := make([]float64, len(signal))

	var x1, y1 float64
	for i, x := range signal {
		y := x - x1 + dc.pole*y1
		out[i] = y
		x1, y1 = x, y
	}

	return out
}
