package temporal

import (
	"github.com/RyanBlaney/sonido-partials/algorithms/common"
)

// AmplitudeStats summarizes the present (above floor) samples of an envelope
type AmplitudeStats struct {
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Range float64 `json:"range"`
	Count int     `json:"count"` // present samples
}

// FrequencyStats summarizes a partial's frequency over the frames where it is present
type FrequencyStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Smooth applies a centered moving average of the given window length.
// A window of 1, or a series shorter than the window, is returned unchanged.
func Smooth(x []float64, window int) []float64 {
	return common.MovingAverage(x, window)
}

// PresentIndices returns the indices of samples strictly above floor
func PresentIndices(amps []float64, floor float64) []int {
	indices := make([]int, 0, len(amps))
	for i, a := range amps {
		if a > floor {
			indices = append(indices, i)
		}
	}
	return indices
}

// gather picks values at the given indices
func gather(values []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}

// ComputeAmplitudeStats computes statistics over the samples above floor.
// All fields are zero when no sample is present.
func ComputeAmplitudeStats(amps []float64, floor float64) AmplitudeStats {
	present := gather(amps, PresentIndices(amps, floor))
	if len(present) == 0 {
		return AmplitudeStats{}
	}

	maxVal, minVal := common.Max(present), common.Min(present)
	return AmplitudeStats{
		Mean:  common.Mean(present),
		Max:   maxVal,
		Min:   minVal,
		Range: maxVal - minVal,
		Count: len(present),
	}
}

// ComputeFrequencyStats computes mean and deviation of freqs over frames
// where the amplitude is above floor and the frequency is set
func ComputeFrequencyStats(freqs, amps []float64, floor float64) FrequencyStats {
	var present []float64
	for i := range min(len(freqs), len(amps)) {
		if amps[i] > floor && freqs[i] > 0 {
			present = append(present, freqs[i])
		}
	}
	if len(present) == 0 {
		return FrequencyStats{}
	}

	return FrequencyStats{
		Mean:   common.Mean(present),
		StdDev: common.StandardDeviation(present),
	}
}
