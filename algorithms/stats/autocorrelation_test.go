package stats

import (
	"math"
	"testing"
)

func directAutocorrelation(x []float64, subtractMean bool) []float64 {
	n := len(x)
	y := make([]float64, n)
	copy(y, x)
	if subtractMean {
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		mean /= float64(n)
		for i := range y {
			y[i] -= mean
		}
	}

	r := make([]float64, n)
	for k := range n {
		for i := 0; i+k < n; i++ {
			r[k] += y[i] * y[i+k]
		}
	}
	for k := n - 1; k >= 0; k-- {
		r[k] /= r[0]
	}
	return r
}

func TestAutoCorrelationMatchesDirectSum(t *testing.T) {
	signal := []float64{3, -1, 4, 1, -5, 9, 2, -6, 5, 3, -5, 8, 9, -7, 9}

	for _, tt := range []struct {
		name string
		ac   *AutoCorrelation
		mean bool
	}{
		{"mean removed", NewAutoCorrelation(), true},
		{"raw", NewAutoCorrelationRaw(), false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ac.Compute(signal)
			want := directAutocorrelation(signal, tt.mean)
			if len(got) != len(want) {
				t.Fatalf("len = %d, want %d", len(got), len(want))
			}
			for k := range want {
				if math.Abs(got[k]-want[k]) > 1e-9 {
					t.Fatalf("lag %d: got %v, want %v", k, got[k], want[k])
				}
			}
		})
	}
}

func TestAutoCorrelationPeriodicSignal(t *testing.T) {
	const period = 8
	signal := make([]float64, 128)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}

	acf := NewAutoCorrelation().Compute(signal)
	if math.Abs(acf[0]-1) > 1e-12 {
		t.Fatalf("acf[0] = %v, want 1", acf[0])
	}

	best := 1
	for k := 2; k < 12; k++ {
		if acf[k] > acf[best] {
			best = k
		}
	}
	if best != period {
		t.Errorf("strongest non-zero lag = %d, want %d", best, period)
	}
}

func TestAutoCorrelationDegenerateInput(t *testing.T) {
	if got := NewAutoCorrelation().Compute(nil); len(got) != 0 {
		t.Errorf("empty input: got %v", got)
	}

	constant := []float64{-30, -30, -30, -30, -30}
	for k, v := range NewAutoCorrelation().Compute(constant) {
		if v != 0 {
			t.Fatalf("constant input lag %d = %v, want 0", k, v)
		}
	}
}
