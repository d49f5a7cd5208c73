package filters

import (
	"math"
	"testing"
)

func TestDCRemovalBlocksOffset(t *testing.T) {
	const sampleRate = 8000
	dc, err := NewDCRemoval(sampleRate, 10)
	if err != nil {
		t.Fatalf("NewDCRemoval: %v", err)
	}

	signal := make([]float64, 4*sampleRate)
	for i := range signal {
		signal[i] = 0.5 + 0.25*math.Sin(2*math.Pi*440*float64(i)/sampleRate)
	}

	out := dc.Process(signal)
	if len(out) != len(signal) {
		t.Fatalf("len = %d, want %d", len(out), len(signal))
	}

	// mean over the settled tail should be ~0, the tone should survive
	tail := out[3*sampleRate:]
	mean, peak := 0.0, 0.0
	for _, v := range tail {
		mean += v
		peak = max(peak, math.Abs(v))
	}
	mean /= float64(len(tail))

	if math.Abs(mean) > 1e-3 {
		t.Errorf("residual DC = %v", mean)
	}
	if peak < 0.2 || peak > 0.3 {
		t.Errorf("tone peak = %v, want ~0.25", peak)
	}
}

func TestNewDCRemovalInvalid(t *testing.T) {
	for _, tt := range []struct {
		rate   int
		cutoff float64
	}{
		{0, 10},
		{8000, 0},
		{8000, 2000},
	} {
		if _, err := NewDCRemoval(tt.rate, tt.cutoff); err == nil {
			t.Errorf("NewDCRemoval(%d, %g): expected an error", tt.rate, tt.cutoff)
		}
	}
}
