package common

import (
	"math"
	"slices"
	"testing"
)

func TestMovingAverageIdentityForWindowOne(t *testing.T) {
	data := []float64{-3, 7.5, 0, -60, 12, 1e-9}
	got := MovingAverage(data, 1)
	if !slices.Equal(got, data) {
		t.Fatalf("window 1 should be identity: got %v", got)
	}
	got[0] = 99
	if data[0] == 99 {
		t.Fatal("MovingAverage must not alias its input")
	}
}

func TestMovingAverageShortInputPassesThrough(t *testing.T) {
	data := []float64{1, 2, 3}
	if got := MovingAverage(data, 5); !slices.Equal(got, data) {
		t.Fatalf("short input should pass through: got %v", got)
	}
}

func TestMovingAverageCentered(t *testing.T) {
	data := []float64{0, 0, 3, 0, 0}
	got := MovingAverage(data, 3)
	want := []float64{0, 1, 1, 1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("MovingAverage = %v, want %v", got, want)
		}
	}
}

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name        string
		data        []float64
		minHeight   float64
		minDistance float64
		want        []int
	}{
		{"simple", []float64{0, 1, 0, 2, 0}, 0, 1, []int{1, 3}},
		{"height", []float64{0, 1, 0, 2, 0}, 1.5, 1, []int{3}},
		{"plateau middle", []float64{0, 2, 2, 2, 0}, 0, 1, []int{2}},
		{"edges ignored", []float64{5, 1, 5}, 0, 1, []int{}},
		{"distance keeps higher", []float64{0, 3, 0, 5, 0, 1, 0}, 0, 3, []int{3}},
		{"distance far enough", []float64{0, 3, 0, 0, 5, 0}, 0, 3, []int{1, 4}},
		{"too short", []float64{1, 2}, 0, 1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPeaks(tt.data, tt.minHeight, tt.minDistance)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindPeaks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatsOnEmptyInput(t *testing.T) {
	if Mean(nil) != 0 || StandardDeviation([]float64{4}) != 0 || Min(nil) != 0 || Max(nil) != 0 {
		t.Fatal("empty or single-sample statistics should be zero")
	}
	if len(Diff([]float64{1})) != 0 {
		t.Fatal("Diff of a single sample should be empty")
	}
}

func TestLinRegression(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{3, 5, 7, 9}
	slope, intercept := LinRegression(x, y)
	if math.Abs(slope-2) > 1e-9 || math.Abs(intercept-1) > 1e-9 {
		t.Fatalf("LinRegression = %v, %v; want 2, 1", slope, intercept)
	}
}
