package partials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-partials/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-partials/algorithms/temporal"
	"github.com/RyanBlaney/sonido-partials/logging"
	"github.com/RyanBlaney/sonido-partials/partials/config"
)

// Result is the output of one analysis run
type Result struct {
	Matrix      *PartialMatrix               `json:"matrix"`
	Fundamental harmonic.FundamentalEstimate `json:"fundamental"`
	Series      *harmonic.HarmonicSeries     `json:"series,omitempty"`
	Envelopes   []*temporal.EnvelopeAnalysis `json:"envelopes"` // indexed by partial column
	Duration    time.Duration                `json:"duration"`
}

// Analyzer runs the full pipeline: partial matrix, fundamental estimate and
// per-partial envelope analysis
type Analyzer struct {
	config    *config.AnalysisConfig
	builder   *Builder
	estimator *harmonic.FundamentalEstimator
	envelopes *temporal.EnvelopeAnalyzer
	observer  Observer
	logger    logging.Logger
}

// NewAnalyzer validates the configuration and prepares every stage.
// A nil config selects the defaults.
func NewAnalyzer(cfg *config.AnalysisConfig, opts ...Option) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}

	builder, err := NewBuilder(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}

	estimator, err := harmonic.NewFundamentalEstimator(cfg.Fundamental)
	if err != nil {
		return nil, fmt.Errorf("invalid fundamental config: %w", err)
	}

	envelopes, err := temporal.NewEnvelopeAnalyzer(cfg.Envelope)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope config: %w", err)
	}

	return &Analyzer{
		config:    cfg,
		builder:   builder,
		estimator: estimator,
		envelopes: envelopes,
		observer:  builder.observer,
		logger: logging.WithFields(logging.Fields{
			"component": "partial_analyzer",
		}),
	}, nil
}

// Run analyzes a mono buffer. The stages themselves are not interruptible;
// ctx is checked before each one starts.
func (a *Analyzer) Run(ctx context.Context, samples []float64, sampleRate int) (*Result, error) {
	start := time.Now()
	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Run",
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matrix, err := a.builder.Build(samples, sampleRate)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stopped after partial tracking: %w", err)
	}

	result := &Result{Matrix: matrix}

	// the estimate and the envelopes only read the matrix
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result.Fundamental = a.estimator.Estimate(matrix.Freqs, matrix.Amps)
		if a.config.SeriesHarmonics > 0 {
			result.Series = harmonic.AnalyzeHarmonicSeries(matrix.Freqs, matrix.Amps, result.Fundamental,
				a.config.Fundamental.HarmonicTolerance, a.config.SeriesHarmonics)
		}
	}()

	result.Envelopes = a.AnalyzeEnvelopes(matrix)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stopped after envelope analysis: %w", err)
	}

	result.Duration = time.Since(start)

	if !result.Fundamental.Detected() {
		logger.Warn("No fundamental detected", logging.Fields{
			"frames": matrix.NumFrames(),
		})
	}

	logger.Info("Partial analysis complete", logging.Fields{
		"frames":      matrix.NumFrames(),
		"partials":    len(result.Envelopes),
		"fundamental": result.Fundamental.Frequency,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}

// AnalyzeEnvelopes analyzes every column of the matrix in parallel. The
// result has one entry per column, MaxPartials in total.
func (a *Analyzer) AnalyzeEnvelopes(matrix *PartialMatrix) []*temporal.EnvelopeAnalysis {
	total := matrix.MaxPartials
	results := make([]*temporal.EnvelopeAnalysis, total)
	if total == 0 {
		return results
	}

	floor := a.config.Envelope.SilenceFloorDB

	var wg sync.WaitGroup
	numWorkers := a.config.WorkerCount(total)
	jobs := make(chan int, total)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				freqs, amps := matrix.Column(j, floor)
				results[j] = a.envelopes.Analyze(j, matrix.Times, amps, freqs)
				a.observer.PartialDone(j, total)
			}
		}()
	}

	for j := range total {
		jobs <- j
	}
	close(jobs)

	wg.Wait()

	return results
}
