package windowing

import (
	"math"
	"testing"
)

func TestHannPeriodicShape(t *testing.T) {
	h := NewHann(8, false)
	c := h.GetCoefficients()

	if c[0] != 0 {
		t.Errorf("first coefficient = %v, want 0", c[0])
	}
	if math.Abs(c[4]-1) > 1e-12 {
		t.Errorf("center coefficient = %v, want 1", c[4])
	}
	for i := 1; i < 4; i++ {
		if math.Abs(c[i]-c[8-i]) > 1e-12 {
			t.Errorf("periodic window not symmetric about N/2 at %d: %v vs %v", i, c[i], c[8-i])
		}
	}
}

func TestHannApplyZeroPads(t *testing.T) {
	h := NewHann(8, false)
	out, err := h.Apply([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}
	for i := 4; i < 8; i++ {
		if out[i] != 0 {
			t.Errorf("padded sample %d = %v, want 0", i, out[i])
		}
	}
	coeffs := h.GetCoefficients()
	for i := 0; i < 4; i++ {
		if math.Abs(out[i]-coeffs[i]) > 1e-12 {
			t.Errorf("sample %d = %v, want %v", i, out[i], coeffs[i])
		}
	}
}

func TestHannRejectsLongSignal(t *testing.T) {
	h := NewHann(4, false)
	if _, err := h.Apply(make([]float64, 5)); err == nil {
		t.Fatal("expected error for signal longer than window")
	}
}
