package partials

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-partials/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
	"github.com/RyanBlaney/sonido-partials/logging"
	"github.com/RyanBlaney/sonido-partials/partials/config"
)

// Builder turns a sample buffer into a PartialMatrix
type Builder struct {
	config   *config.AnalysisConfig
	observer Observer
	logger   logging.Logger
}

// NewBuilder creates a builder. A nil config selects the defaults.
func NewBuilder(cfg *config.AnalysisConfig, opts ...Option) (*Builder, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Builder{
		config:   cfg,
		observer: o.observer,
		logger: logging.WithFields(logging.Fields{
			"component": "partial_matrix_builder",
		}),
	}, nil
}

// Build frames the buffer, extracts each frame's peaks in parallel and
// assembles them into a matrix. Invalid framing fails before any frame is
// processed.
func (b *Builder) Build(samples []float64, sampleRate int) (*PartialMatrix, error) {
	logger := b.logger.WithFields(logging.Fields{
		"function":    "Build",
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})

	frames, err := spectral.NewFrameSource(samples, sampleRate, b.config.Frames)
	if err != nil {
		return nil, fmt.Errorf("failed to frame signal: %w", err)
	}

	extractor, err := harmonic.NewSpectralPeakExtractor(sampleRate, b.config.Frames.WindowSize, b.config.Peaks)
	if err != nil {
		return nil, fmt.Errorf("failed to create peak extractor: %w", err)
	}

	// sized for the uncapped frame count, trimmed to what was processed
	capacity := (len(samples)-b.config.Frames.WindowSize)/b.config.Frames.HopSize + 1
	matrix := newPartialMatrix(capacity, b.config.Peaks.MaxPartials)
	matrix.SampleRate = sampleRate
	matrix.WindowSize = b.config.Frames.WindowSize
	matrix.HopSize = b.config.Frames.HopSize

	total := frames.NumFrames()
	var processed atomic.Int64

	var wg sync.WaitGroup
	numWorkers := b.config.WorkerCount(total)
	jobs := make(chan int, total)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				frame := frames.Frame(i)
				freqs, amps := extractor.Extract(frame.Samples)
				matrix.setRow(i, frame.Time, freqs, amps)
				processed.Add(1)
				b.observer.FrameDone(i, total, len(freqs))
			}
		}()
	}

	for i := range total {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	matrix.trim(int(processed.Load()))

	logger.Debug("Partial matrix built", logging.Fields{
		"frames":          matrix.NumFrames(),
		"workers":         numWorkers,
		"active_partials": matrix.ActivePartials(),
	})

	return matrix, nil
}
