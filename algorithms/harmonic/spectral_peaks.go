package harmonic

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-partials/algorithms/common"
	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
	"github.com/RyanBlaney/sonido-partials/algorithms/windowing"
)

// SpectralPeak represents a detected spectral peak
type SpectralPeak struct {
	Frequency   float64 `json:"frequency"`    // Peak frequency in Hz
	AmplitudeDB float64 `json:"amplitude_db"` // Peak level in dBFS
	BinIndex    int     `json:"bin_index"`    // FFT bin of the local maximum
}

// PeakParams controls per-frame peak picking
type PeakParams struct {
	DynamicRangeDB  float64 `json:"dynamic_range_db"`  // peaks must lie within this range of the frame maximum
	MaxPartials     int     `json:"max_partials"`      // keep at most this many peaks per frame
	MinPeakDistance int     `json:"min_peak_distance"` // minimum spacing in FFT bins
	ThresholdDB     float64 `json:"threshold_db"`      // absolute floor, peaks at or below are discarded
	Interpolate     bool    `json:"interpolate"`       // parabolic sub-bin refinement
}

// DefaultPeakParams returns the default peak picking parameters
func DefaultPeakParams() PeakParams {
	return PeakParams{
		DynamicRangeDB:  42,
		MaxPartials:     20,
		MinPeakDistance: 10,
		ThresholdDB:     -60,
		Interpolate:     false,
	}
}

// Validate checks the parameters
func (p PeakParams) Validate() error {
	if p.DynamicRangeDB <= 0 {
		return fmt.Errorf("%w: dynamic range must be positive, got %g", spectral.ErrInvalidParameters, p.DynamicRangeDB)
	}
	if p.MaxPartials <= 0 {
		return fmt.Errorf("%w: max partials must be positive, got %d", spectral.ErrInvalidParameters, p.MaxPartials)
	}
	if p.MinPeakDistance <= 0 {
		return fmt.Errorf("%w: min peak distance must be positive, got %d", spectral.ErrInvalidParameters, p.MinPeakDistance)
	}
	return nil
}

// SpectralPeakExtractor windows a frame, computes its dB spectrum and picks
// a bounded set of prominent peaks. It holds no per-frame state, so one
// extractor can serve many goroutines.
type SpectralPeakExtractor struct {
	sampleRate int
	windowSize int
	params     PeakParams
	window     *windowing.Hann
	fft        *spectral.FFT
}

// NewSpectralPeakExtractor creates an extractor for frames of windowSize samples
func NewSpectralPeakExtractor(sampleRate, windowSize int, params PeakParams) (*SpectralPeakExtractor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 || windowSize < 2 {
		return nil, fmt.Errorf("%w: sample rate %d, window size %d", spectral.ErrInvalidParameters, sampleRate, windowSize)
	}

	return &SpectralPeakExtractor{
		sampleRate: sampleRate,
		windowSize: windowSize,
		params:     params,
		window:     windowing.NewHann(windowSize, false),
		fft:        spectral.NewFFT(),
	}, nil
}

// Extract returns the frame's peaks as co-sorted frequency (Hz) and level (dBFS)
// slices, ascending by frequency. Silent frames yield empty slices.
func (e *SpectralPeakExtractor) Extract(frame []float64) (freqs, amps []float64) {
	peaks := e.DetectPeaks(frame)

	freqs = make([]float64, len(peaks))
	amps = make([]float64, len(peaks))
	for i, p := range peaks {
		freqs[i] = p.Frequency
		amps[i] = p.AmplitudeDB
	}
	return freqs, amps
}

// DetectPeaks returns the frame's peaks ascending by frequency
func (e *SpectralPeakExtractor) DetectPeaks(frame []float64) []SpectralPeak {
	windowed, err := e.window.Apply(frame)
	if err != nil {
		// longer frames are truncated to the analysis window
		windowed, _ = e.window.Apply(frame[:e.windowSize])
	}

	spectrumDB := e.fft.HalfSpectrumDB(windowed)
	if len(spectrumDB) < 3 {
		return []SpectralPeak{}
	}

	// the peak finder wants non-negative input; levels are read from spectrumDB
	floor := common.Min(spectrumDB)
	shifted := make([]float64, len(spectrumDB))
	for i, v := range spectrumDB {
		shifted[i] = v - floor
	}

	minHeight := max(common.Max(shifted)-e.params.DynamicRangeDB, 0)
	bins := common.FindPeaks(shifted, minHeight, float64(e.params.MinPeakDistance))

	peaks := make([]SpectralPeak, 0, len(bins))
	for _, bin := range bins {
		if spectrumDB[bin] <= e.params.ThresholdDB {
			continue
		}
		peaks = append(peaks, SpectralPeak{
			Frequency:   spectral.BinFrequency(bin, e.sampleRate, e.windowSize),
			AmplitudeDB: spectrumDB[bin],
			BinIndex:    bin,
		})
	}

	if len(peaks) > e.params.MaxPartials {
		sort.SliceStable(peaks, func(i, j int) bool {
			return peaks[i].AmplitudeDB > peaks[j].AmplitudeDB
		})
		peaks = peaks[:e.params.MaxPartials]
	}

	if e.params.Interpolate {
		peaks = e.refineWithInterpolation(spectrumDB, peaks)
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Frequency < peaks[j].Frequency
	})

	return peaks
}

// refineWithInterpolation moves each peak to the vertex of the parabola
// through its bin and the two neighbours.
func (e *SpectralPeakExtractor) refineWithInterpolation(spectrumDB []float64, peaks []SpectralPeak) []SpectralPeak {
	refined := make([]SpectralPeak, len(peaks))

	for i, peak := range peaks {
		refined[i] = peak
		bin := peak.BinIndex
		if bin <= 0 || bin >= len(spectrumDB)-1 {
			continue
		}

		y1 := spectrumDB[bin-1]
		y2 := spectrumDB[bin]
		y3 := spectrumDB[bin+1]

		denom := y1 - 2.0*y2 + y3
		if denom >= 0 {
			continue
		}

		offset := 0.5 * (y1 - y3) / denom
		refined[i].Frequency = (float64(bin) + offset) * float64(e.sampleRate) / float64(e.windowSize)
		refined[i].AmplitudeDB = y2 - 0.25*(y1-y3)*offset
	}

	return refined
}
