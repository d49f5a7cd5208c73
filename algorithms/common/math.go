package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Numeric helpers shared by the spectral, harmonic and temporal packages.
// Empty inputs return 0 (or an empty slice) instead of NaN.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// Min returns the smallest element, 0 for an empty slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Min(data)
}

// Max returns the largest element, 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// Diff returns the forward differences data[i+1]-data[i]
func Diff(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}
	out := make([]float64, len(data)-1)
	for i := range out {
		out[i] = data[i+1] - data[i]
	}
	return out
}

// MovingAverage returns a centered simple moving average of the same length as data.
// The window shrinks at the edges. Inputs shorter than the window, and windows
// of 1 or less, are returned as an unchanged copy.
func MovingAverage(data []float64, windowSize int) []float64 {
	result := make([]float64, len(data))
	copy(result, data)
	if windowSize <= 1 || len(data) < windowSize {
		return result
	}

	before := windowSize / 2
	after := windowSize - before - 1

	// prefix sums keep this linear in len(data)
	prefix := make([]float64, len(data)+1)
	for i, v := range data {
		prefix[i+1] = prefix[i] + v
	}

	for i := range data {
		lo := max(i-before, 0)
		hi := min(i+after, len(data)-1)
		result[i] = (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
	}

	return result
}

// FindPeaks finds local maxima in data that are at least minHeight high and at
// least minDistance samples apart. Flat peaks report their middle sample. When
// two peaks are closer than minDistance the higher one is kept (the earlier one
// on a tie). The returned indices are ascending.
func FindPeaks(data []float64, minHeight, minDistance float64) []int {
	if len(data) < 3 {
		return []int{}
	}

	candidates := localMaxima(data)

	peaks := candidates[:0]
	for _, idx := range candidates {
		if data[idx] >= minHeight {
			peaks = append(peaks, idx)
		}
	}

	distance := int(math.Ceil(minDistance))
	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}

	return selectByDistance(data, peaks, distance)
}

func localMaxima(data []float64) []int {
	peaks := []int{}
	last := len(data) - 1

	for i := 1; i < last; i++ {
		if data[i-1] >= data[i] {
			continue
		}

		ahead := i + 1
		for ahead < last && data[ahead] == data[i] {
			ahead++
		}

		if data[ahead] < data[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead - 1
		}
	}

	return peaks
}

func selectByDistance(data []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return data[peaks[order[a]]] > data[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for _, i := range order {
		if !keep[i] {
			continue
		}
		for k := i - 1; k >= 0 && peaks[i]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := i + 1; k < len(peaks) && peaks[k]-peaks[i] < distance; k++ {
			keep[k] = false
		}
	}

	selected := make([]int, 0, len(peaks))
	for i, idx := range peaks {
		if keep[i] {
			selected = append(selected, idx)
		}
	}

	return selected
}

// LinRegression performs simple linear regression and returns slope and intercept
func LinRegression(x, y []float64) (slope, intercept float64) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return 0, 0
	}

	return beta, alpha
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
