package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-partials/algorithms/common"
)

// Dynamics describes how fast an envelope rises and falls
type Dynamics struct {
	Times        []float64 `json:"times"`          // time of each rate sample
	Rates        []float64 `json:"rates"`          // dB/s
	Inflections  []float64 `json:"inflections"`    // seconds
	Threshold    float64   `json:"threshold"`      // dB/s, rates below are ignored for inflections
	MaxRiseRate  float64   `json:"max_rise_rate"`  // dB/s, >= 0
	MaxDecayRate float64   `json:"max_decay_rate"` // dB/s magnitude, >= 0
}

func emptyDynamics() Dynamics {
	return Dynamics{Times: []float64{}, Rates: []float64{}, Inflections: []float64{}}
}

// AnalyzeDynamics differentiates the (already smoothed) envelope with
// respect to time and reports the points where it turns from rising to
// falling or back. Rates whose magnitude is below
// max(DerivativeRatio * peak rate, DerivativeFloor) are treated as flat, and
// turns closer than MinInflectionGap to the previous kept one are merged
// into it. Series shorter than MinSamples give an empty result.
func AnalyzeDynamics(times, envelope []float64, params EnvelopeParams) Dynamics {
	n := min(len(times), len(envelope))
	if n < params.MinSamples || n < 2 {
		return emptyDynamics()
	}

	rates := make([]float64, n-1)
	rateTimes := make([]float64, n-1)
	for i := range rates {
		rateTimes[i] = times[i]
		if dt := times[i+1] - times[i]; dt > 0 {
			rates[i] = (envelope[i+1] - envelope[i]) / dt
		}
	}

	if len(rates) > 10 {
		rates = Smooth(rates, params.SmoothingWindow)
	}

	peakRate := 0.0
	for _, r := range rates {
		peakRate = max(peakRate, math.Abs(r))
	}
	threshold := max(params.DerivativeRatio*peakRate, params.DerivativeFloor)

	dyn := Dynamics{
		Times:        rateTimes,
		Rates:        rates,
		Inflections:  mergeClose(signChanges(rateTimes, rates, threshold), params.MinInflectionGap),
		Threshold:    threshold,
		MaxRiseRate:  max(common.Max(rates), 0),
		MaxDecayRate: max(-common.Min(rates), 0),
	}
	return dyn
}

// signChanges returns the times where the sign of the thresholded rate
// differs from the last non-flat sign
func signChanges(times, rates []float64, threshold float64) []float64 {
	changes := []float64{}
	lastSign := 0.0

	for i, r := range rates {
		if math.Abs(r) < threshold {
			continue
		}
		sign := math.Copysign(1, r)
		if lastSign != 0 && sign != lastSign {
			changes = append(changes, times[i])
		}
		lastSign = sign
	}

	return changes
}

// mergeClose keeps the first time of every cluster whose members are closer than gap
func mergeClose(times []float64, gap float64) []float64 {
	kept := make([]float64, 0, len(times))
	for _, t := range times {
		if len(kept) == 0 || t-kept[len(kept)-1] >= gap {
			kept = append(kept, t)
		}
	}
	return kept
}
