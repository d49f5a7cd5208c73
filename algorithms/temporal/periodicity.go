package temporal

import (
	"github.com/RyanBlaney/sonido-partials/algorithms/common"
	"github.com/RyanBlaney/sonido-partials/algorithms/stats"
)

// Periodicity is a repetition found in the autocorrelation of an envelope
type Periodicity struct {
	Period     float64 `json:"period"`     // seconds, 0 if none
	Lag        int     `json:"lag"`        // samples
	Confidence float64 `json:"confidence"` // normalized autocorrelation at Lag, in [0, 1]
}

// DetectPeriodicity looks for the first autocorrelation peak of the present
// envelope samples that reaches PeriodicityThreshold of the autocorrelation
// range at a lag of at least MinPeriodLag. Lags are converted to seconds
// with the mean frame interval of times.
func DetectPeriodicity(times, amps []float64, params EnvelopeParams) Periodicity {
	present := gather(amps, PresentIndices(amps, params.SilenceFloorDB))
	if len(present) < params.MinSamples || len(times) < 2 {
		return Periodicity{}
	}

	acf := stats.NewAutoCorrelation().Compute(present)
	positive := acf[1:]

	lowest := common.Min(positive)
	shifted := make([]float64, len(positive))
	for i, v := range positive {
		shifted[i] = v
		if lowest < 0 {
			shifted[i] -= lowest
		}
	}

	spread := common.Max(shifted) - common.Min(shifted)
	if spread <= 0 {
		return Periodicity{}
	}

	for _, k := range common.FindPeaks(shifted, params.PeriodicityThreshold*spread, 1) {
		lag := k + 1
		if lag < params.MinPeriodLag {
			continue
		}

		interval := common.Mean(common.Diff(times))
		return Periodicity{
			Period:     float64(lag) * interval,
			Lag:        lag,
			Confidence: common.Clamp(acf[lag], 0, 1),
		}
	}

	return Periodicity{}
}
