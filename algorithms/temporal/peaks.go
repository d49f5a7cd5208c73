package temporal

import (
	"github.com/RyanBlaney/sonido-partials/algorithms/common"
)

// EnvelopePeaks holds the local maxima of an envelope
type EnvelopePeaks struct {
	Indices []int     `json:"indices"`
	Times   []float64 `json:"times"`
	Values  []float64 `json:"values"` // envelope level in dBFS
}

// Rhythm holds inter-peak interval statistics
type Rhythm struct {
	Intervals []float64 `json:"intervals"`
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std_dev"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
}

// DetectPeaks finds maxima of envelope, usually the smoothed series, over
// the frames where the raw amps are above floor. The present samples are
// shifted to start at zero and a peak must rise to at least their mean and
// lie minDistance samples from any higher peak. Distance is counted over
// present samples, so gaps of absent frames do not separate peaks.
func DetectPeaks(times, envelope, amps []float64, floor float64, minDistance int) EnvelopePeaks {
	result := EnvelopePeaks{Indices: []int{}, Times: []float64{}, Values: []float64{}}

	n := min(len(times), len(envelope), len(amps))
	present := PresentIndices(amps[:n], floor)
	if len(present) < 3 {
		return result
	}

	values := gather(envelope, present)
	lowest := common.Min(values)
	shifted := make([]float64, len(values))
	for i, v := range values {
		shifted[i] = v - lowest
	}

	minHeight := common.Mean(values) - lowest
	for _, k := range common.FindPeaks(shifted, minHeight, float64(minDistance)) {
		idx := present[k]
		result.Indices = append(result.Indices, idx)
		result.Times = append(result.Times, times[idx])
		result.Values = append(result.Values, envelope[idx])
	}

	return result
}

// RhythmStats computes interval statistics from ascending peak times.
// Fewer than two peaks give an empty result.
func RhythmStats(peakTimes []float64) Rhythm {
	if len(peakTimes) < 2 {
		return Rhythm{Intervals: []float64{}}
	}

	intervals := common.Diff(peakTimes)
	return Rhythm{
		Intervals: intervals,
		Mean:      common.Mean(intervals),
		StdDev:    common.StandardDeviation(intervals),
		Min:       common.Min(intervals),
		Max:       common.Max(intervals),
	}
}
