package temporal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
)

// EnvelopeParams contains parameters for partial envelope analysis
type EnvelopeParams struct {
	SilenceFloorDB  float64 `json:"silence_floor_db"` // samples at or below are treated as absent
	SmoothingWindow int     `json:"smoothing_window"` // moving average length in samples

	// Peak detection
	MinPeakDistance int `json:"min_peak_distance"` // samples

	// Activity segmentation
	ActivityThresholdDB float64 `json:"activity_threshold_db"`
	MinSegmentDuration  float64 `json:"min_segment_duration"` // seconds

	// Dynamics
	MinInflectionGap float64 `json:"min_inflection_gap"` // seconds
	DerivativeFloor  float64 `json:"derivative_floor"`   // dB/s, lower bound of the masking threshold
	DerivativeRatio  float64 `json:"derivative_ratio"`   // fraction of the peak rate used for masking

	// Periodicity
	PeriodicityThreshold float64 `json:"periodicity_threshold"` // fraction of the autocorrelation range
	MinPeriodLag         int     `json:"min_period_lag"`        // samples

	MinSamples int `json:"min_samples"` // dynamics and periodicity are skipped below this
}

// DefaultEnvelopeParams returns the default envelope analysis parameters
func DefaultEnvelopeParams() EnvelopeParams {
	return EnvelopeParams{
		SilenceFloorDB:       -60,
		SmoothingWindow:      5,
		MinPeakDistance:      20,
		ActivityThresholdDB:  -40,
		MinSegmentDuration:   0.1,
		MinInflectionGap:     0.1,
		DerivativeFloor:      5,
		DerivativeRatio:      0.1,
		PeriodicityThreshold: 0.3,
		MinPeriodLag:         5,
		MinSamples:           10,
	}
}

// Validate checks the parameters
func (p EnvelopeParams) Validate() error {
	if p.SmoothingWindow <= 0 {
		return fmt.Errorf("%w: smoothing window must be positive, got %d", spectral.ErrInvalidParameters, p.SmoothingWindow)
	}
	if p.MinPeakDistance <= 0 {
		return fmt.Errorf("%w: min peak distance must be positive, got %d", spectral.ErrInvalidParameters, p.MinPeakDistance)
	}
	if p.MinSegmentDuration < 0 || p.MinInflectionGap < 0 {
		return fmt.Errorf("%w: durations must not be negative", spectral.ErrInvalidParameters)
	}
	if p.DerivativeFloor < 0 || p.DerivativeRatio < 0 {
		return fmt.Errorf("%w: derivative threshold must not be negative", spectral.ErrInvalidParameters)
	}
	if p.PeriodicityThreshold < 0 || p.PeriodicityThreshold >= 1 {
		return fmt.Errorf("%w: periodicity threshold must be in [0, 1), got %g", spectral.ErrInvalidParameters, p.PeriodicityThreshold)
	}
	if p.MinPeriodLag <= 0 {
		return fmt.Errorf("%w: min period lag must be positive, got %d", spectral.ErrInvalidParameters, p.MinPeriodLag)
	}
	if p.MinSamples < 2 {
		return fmt.Errorf("%w: min samples must be at least 2, got %d", spectral.ErrInvalidParameters, p.MinSamples)
	}
	return nil
}
