package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-partials/algorithms/common"
)

// HarmonicMatch describes how harmonic n of the fundamental showed up in the stable region
type HarmonicMatch struct {
	Number        int     `json:"number"`
	IdealFreq     float64 `json:"ideal_freq"`     // n * f0
	MeanFreq      float64 `json:"mean_freq"`      // mean of the matched peak frequencies, 0 if never matched
	MeanDB        float64 `json:"mean_db"`        // mean level of the matched peaks
	Occurrence    float64 `json:"occurrence"`     // fraction of stable frames with a match
	RelDeviation  float64 `json:"rel_deviation"`  // (MeanFreq - IdealFreq) / IdealFreq
	MatchedFrames int     `json:"matched_frames"` // frames where a peak fell inside the tolerance window
}

// HarmonicSeries summarizes the harmonic structure around an estimated fundamental
type HarmonicSeries struct {
	Fundamental   float64         `json:"fundamental"`
	Harmonics     []HarmonicMatch `json:"harmonics"`
	OddEvenRatio  float64         `json:"odd_even_ratio"`  // energy of odd harmonics above the fundamental over even harmonics
	DecaySlope    float64         `json:"decay_slope"`     // dB per harmonic number, least squares
	Inharmonicity float64         `json:"inharmonicity"`   // B in f_n = n*f0*(1 + B*n^2), amplitude weighted
	Matched       int             `json:"matched"`         // harmonics seen at least once
}

// AnalyzeHarmonicSeries profiles harmonics 1..maxHarmonics of est over the
// stable frames recorded in est. In each frame the peak nearest to n*f0
// within n*f0*tol is taken as harmonic n.
func AnalyzeHarmonicSeries(freqs, amps [][]float64, est FundamentalEstimate, tol float64, maxHarmonics int) *HarmonicSeries {
	series := &HarmonicSeries{Fundamental: est.Frequency}
	if !est.Detected() || maxHarmonics <= 0 || tol <= 0 {
		return series
	}

	start := max(est.StartFrame, 0)
	end := min(est.EndFrame, len(freqs), len(amps))
	if end <= start {
		return series
	}
	numFrames := float64(end - start)

	series.Harmonics = make([]HarmonicMatch, 0, maxHarmonics)
	for n := 1; n <= maxHarmonics; n++ {
		ideal := est.Frequency * float64(n)
		match := HarmonicMatch{Number: n, IdealFreq: ideal}

		var matchedFreqs, matchedDB []float64
		for i := start; i < end; i++ {
			if j := nearestPeak(freqs[i], ideal, ideal*tol); j >= 0 && j < len(amps[i]) {
				matchedFreqs = append(matchedFreqs, freqs[i][j])
				matchedDB = append(matchedDB, amps[i][j])
			}
		}

		match.MatchedFrames = len(matchedFreqs)
		if match.MatchedFrames > 0 {
			match.MeanFreq = common.Mean(matchedFreqs)
			match.MeanDB = common.Mean(matchedDB)
			match.Occurrence = float64(match.MatchedFrames) / numFrames
			match.RelDeviation = (match.MeanFreq - ideal) / ideal
			series.Matched++
		}
		series.Harmonics = append(series.Harmonics, match)
	}

	series.OddEvenRatio = oddEvenRatio(series.Harmonics)
	series.DecaySlope = decaySlope(series.Harmonics)
	series.Inharmonicity = inharmonicityCoefficient(series.Harmonics)

	return series
}

// nearestPeak returns the index of the non-padding entry closest to target
// within window, or -1
func nearestPeak(row []float64, target, window float64) int {
	best, bestDist := -1, math.Inf(1)
	for j, f := range row {
		if f == 0 {
			continue
		}
		if d := math.Abs(f - target); d <= window && d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func oddEvenRatio(harmonics []HarmonicMatch) float64 {
	var odd, even float64
	for _, h := range harmonics {
		if h.MatchedFrames == 0 || h.Number == 1 {
			continue
		}
		energy := math.Pow(10, h.MeanDB/10) * h.Occurrence
		if h.Number%2 == 0 {
			even += energy
		} else {
			odd += energy
		}
	}
	if even == 0 {
		return 0
	}
	return odd / even
}

func decaySlope(harmonics []HarmonicMatch) float64 {
	var x, y []float64
	for _, h := range harmonics {
		if h.MatchedFrames > 0 {
			x = append(x, float64(h.Number))
			y = append(y, h.MeanDB)
		}
	}
	if len(x) < 2 {
		return 0
	}
	slope, _ := common.LinRegression(x, y)
	return slope
}

// inharmonicityCoefficient fits RelDeviation ~ B*n^2 by weighted least squares
func inharmonicityCoefficient(harmonics []HarmonicMatch) float64 {
	var numerator, denominator float64
	for _, h := range harmonics {
		if h.MatchedFrames == 0 {
			continue
		}
		n2 := float64(h.Number * h.Number)
		weight := math.Pow(10, h.MeanDB/20) * h.Occurrence
		numerator += weight * h.RelDeviation * n2
		denominator += weight * n2 * n2
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
