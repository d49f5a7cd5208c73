package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/RyanBlaney/sonido-partials/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
	"github.com/RyanBlaney/sonido-partials/algorithms/temporal"
)

// AnalysisConfig holds every parameter of a partial-tracking run
type AnalysisConfig struct {
	Frames      spectral.FrameParams       `json:"frames"`
	Peaks       harmonic.PeakParams        `json:"peaks"`
	Fundamental harmonic.FundamentalParams `json:"fundamental"`
	Envelope    temporal.EnvelopeParams    `json:"envelope"`

	// Harmonic-series profile around the estimated fundamental
	SeriesHarmonics int `json:"series_harmonics"` // 0 disables the profile

	Workers int `json:"workers"` // 0 = runtime.NumCPU()
}

// DefaultAnalysisConfig returns the default analysis configuration
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Frames:          spectral.DefaultFrameParams(),
		Peaks:           harmonic.DefaultPeakParams(),
		Fundamental:     harmonic.DefaultFundamentalParams(),
		Envelope:        temporal.DefaultEnvelopeParams(),
		SeriesHarmonics: 10,
		Workers:         0,
	}
}

// Validate checks every parameter group
func (c *AnalysisConfig) Validate() error {
	if err := c.Frames.Validate(); err != nil {
		return fmt.Errorf("frames: %w", err)
	}
	if err := c.Peaks.Validate(); err != nil {
		return fmt.Errorf("peaks: %w", err)
	}
	if err := c.Fundamental.Validate(); err != nil {
		return fmt.Errorf("fundamental: %w", err)
	}
	if err := c.Envelope.Validate(); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	if c.SeriesHarmonics < 0 {
		return fmt.Errorf("%w: series harmonics must not be negative, got %d", spectral.ErrInvalidParameters, c.SeriesHarmonics)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", spectral.ErrInvalidParameters, c.Workers)
	}
	return nil
}

// WorkerCount resolves Workers against the machine and the amount of work
func (c *AnalysisConfig) WorkerCount(jobs int) int {
	workers := c.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return max(min(workers, jobs), 1)
}

// LoadFile reads a JSON configuration. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*AnalysisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
