package harmonic

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
)

// FundamentalParams controls harmonic-template fundamental estimation
type FundamentalParams struct {
	StartFramePct     float64 `json:"start_frame_pct"`    // stable region start, fraction of frames
	EndFramePct       float64 `json:"end_frame_pct"`      // stable region end, fraction of frames
	HarmonicTolerance float64 `json:"harmonic_tolerance"` // fractional match window around each harmonic
	MinF0             float64 `json:"min_f0"`             // Hz
	MaxF0             float64 `json:"max_f0"`             // Hz
	NumHarmonics      int     `json:"num_harmonics"`      // 0 = number of frames in the stable region
}

// DefaultFundamentalParams returns the default estimation parameters
func DefaultFundamentalParams() FundamentalParams {
	return FundamentalParams{
		StartFramePct:     0.1,
		EndFramePct:       0.5,
		HarmonicTolerance: 0.03,
		MinF0:             20,
		MaxF0:             2000,
		NumHarmonics:      0,
	}
}

// Validate checks the parameters
func (p FundamentalParams) Validate() error {
	if p.StartFramePct < 0 || p.StartFramePct > 1 || p.EndFramePct < 0 || p.EndFramePct > 1 {
		return fmt.Errorf("%w: stable region [%g, %g] must lie within [0, 1]",
			spectral.ErrInvalidParameters, p.StartFramePct, p.EndFramePct)
	}
	if p.HarmonicTolerance <= 0 || p.HarmonicTolerance >= 1 {
		return fmt.Errorf("%w: harmonic tolerance must be in (0, 1), got %g", spectral.ErrInvalidParameters, p.HarmonicTolerance)
	}
	if p.MinF0 <= 0 || p.MaxF0 <= p.MinF0 {
		return fmt.Errorf("%w: f0 range [%g, %g] Hz", spectral.ErrInvalidParameters, p.MinF0, p.MaxF0)
	}
	if p.NumHarmonics < 0 {
		return fmt.Errorf("%w: num harmonics must not be negative, got %d", spectral.ErrInvalidParameters, p.NumHarmonics)
	}
	return nil
}

// FundamentalEstimate is the winning candidate. Frequency is 0 when nothing was detected.
type FundamentalEstimate struct {
	Frequency    float64 `json:"frequency"`
	Score        float64 `json:"score"`
	StartFrame   int     `json:"start_frame"` // stable region, half-open [StartFrame, EndFrame)
	EndFrame     int     `json:"end_frame"`
	NumHarmonics int     `json:"num_harmonics"`
	Candidates   int     `json:"candidates"`
}

// Detected reports whether a fundamental was found
func (fe FundamentalEstimate) Detected() bool {
	return fe.Frequency > 0
}

// FundamentalEstimator scores harmonic templates against the partials of a
// stable time region.
//
// Every candidate c (each observed frequency, and its half and third, limited
// to [MinF0, MaxF0]) collects 10^(dB/20) from every observed peak that lies
// within c*h*tolerance of a harmonic c*h. Scoring in linear amplitude lets the
// strong harmonics dominate.
//
// A sub-harmonic c/k matches every peak that c matches, so exact ties are
// common. Candidates are visited from the highest frequency down and only a
// strictly higher score replaces the current best: on a tie the highest
// candidate frequency wins.
type FundamentalEstimator struct {
	params FundamentalParams
}

// NewFundamentalEstimator creates a new F0 estimator
func NewFundamentalEstimator(params FundamentalParams) (*FundamentalEstimator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &FundamentalEstimator{params: params}, nil
}

// StableRegion returns the frames floor(N*StartFramePct) through
// floor(N*EndFramePct), both included, as the half-open range [start, end).
// An inverted range falls back to all frames.
func (fe *FundamentalEstimator) StableRegion(numFrames int) (start, end int) {
	start = int(math.Floor(float64(numFrames) * fe.params.StartFramePct))
	last := int(math.Floor(float64(numFrames) * fe.params.EndFramePct))
	if last < start || start >= numFrames {
		return 0, numFrames
	}
	return start, min(last+1, numFrames)
}

// tieEpsilon absorbs summation-order rounding so equal scores compare equal
const tieEpsilon = 1e-9

type observedPeak struct {
	freq   float64
	weight float64
}

// Estimate picks the best fundamental from frame-major frequency/level
// matrices. Zero entries are padding and are ignored.
func (fe *FundamentalEstimator) Estimate(freqs, amps [][]float64) FundamentalEstimate {
	numFrames := min(len(freqs), len(amps))
	start, end := fe.StableRegion(numFrames)

	result := FundamentalEstimate{StartFrame: start, EndFrame: end}

	peaks := collectPeaks(freqs[start:end], amps[start:end])
	if len(peaks) == 0 {
		return result
	}

	numHarmonics := fe.params.NumHarmonics
	if numHarmonics == 0 {
		numHarmonics = end - start
	}
	result.NumHarmonics = numHarmonics

	candidates := fe.candidates(peaks)
	result.Candidates = len(candidates)

	best, bestScore := 0.0, 0.0
	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		score := fe.score(c, peaks, numHarmonics)
		if score > bestScore*(1+tieEpsilon) {
			best, bestScore = c, score
		}
	}

	result.Frequency = best
	result.Score = bestScore
	return result
}

func collectPeaks(freqs, amps [][]float64) []observedPeak {
	var peaks []observedPeak
	for i := range freqs {
		row := min(len(freqs[i]), len(amps[i]))
		for j := 0; j < row; j++ {
			if freqs[i][j] == 0 {
				continue
			}
			peaks = append(peaks, observedPeak{
				freq:   freqs[i][j],
				weight: math.Pow(10, amps[i][j]/20),
			})
		}
	}

	// frequency order enables binary search; stable keeps summation order reproducible
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].freq < peaks[j].freq
	})
	return peaks
}

// candidates returns the unique in-range candidate frequencies, ascending
func (fe *FundamentalEstimator) candidates(peaks []observedPeak) []float64 {
	set := make([]float64, 0, 3*len(peaks))
	for _, p := range peaks {
		for _, divisor := range []float64{1, 2, 3} {
			c := p.freq / divisor
			if c >= fe.params.MinF0 && c <= fe.params.MaxF0 {
				set = append(set, c)
			}
		}
	}

	slices.Sort(set)
	return slices.Compact(set)
}

func (fe *FundamentalEstimator) score(candidate float64, peaks []observedPeak, numHarmonics int) float64 {
	highest := peaks[len(peaks)-1].freq
	tol := fe.params.HarmonicTolerance

	score := 0.0
	for h := 1; h <= numHarmonics; h++ {
		expected := candidate * float64(h)
		window := expected * tol
		if expected-window > highest {
			break
		}

		lo := sort.Search(len(peaks), func(i int) bool {
			return peaks[i].freq >= expected-window
		})
		for k := lo; k < len(peaks) && peaks[k].freq <= expected+window; k++ {
			score += peaks[k].weight
		}
	}

	return score
}
