package temporal

import (
	"github.com/RyanBlaney/sonido-partials/algorithms/common"
)

// Segment is a contiguous run of frames above the activity threshold.
// Start and End are inclusive frame indices.
type Segment struct {
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Start      float64 `json:"start"`    // seconds
	End        float64 `json:"end"`      // seconds
	Duration   float64 `json:"duration"` // End - Start
	MeanDB     float64 `json:"mean_db"`
	MaxDB      float64 `json:"max_db"`
}

// SegmentByActivity finds runs where amps exceed threshold using rising and
// falling edges of the activity mask. Runs shorter than minDuration seconds
// are dropped. Segments are returned in time order and never overlap.
func SegmentByActivity(times, amps []float64, threshold, minDuration float64) []Segment {
	n := min(len(times), len(amps))
	segments := []Segment{}

	start := -1
	for i := range n {
		active := amps[i] > threshold

		if active && start == -1 {
			start = i
		}
		if start != -1 && (!active || i == n-1) {
			end := i - 1
			if active {
				end = i
			}

			if seg := newSegment(times, amps, start, end); seg.Duration >= minDuration {
				segments = append(segments, seg)
			}
			start = -1
		}
	}

	return segments
}

func newSegment(times, amps []float64, start, end int) Segment {
	levels := amps[start : end+1]
	return Segment{
		StartIndex: start,
		EndIndex:   end,
		Start:      times[start],
		End:        times[end],
		Duration:   times[end] - times[start],
		MeanDB:     common.Mean(levels),
		MaxDB:      common.Max(levels),
	}
}
