package temporal

// EnvelopeAnalysis is the rhythmic and dynamic profile of one partial column
type EnvelopeAnalysis struct {
	Partial     int            `json:"partial"`
	Shape       Shape          `json:"shape"`
	Amplitude   AmplitudeStats `json:"amplitude"`
	Frequency   FrequencyStats `json:"frequency"`
	Smoothed    []float64      `json:"smoothed"` // same length as the input series
	Peaks       EnvelopePeaks  `json:"peaks"`
	Rhythm      Rhythm         `json:"rhythm"`
	Segments    []Segment      `json:"segments"`
	Dynamics    Dynamics       `json:"dynamics"`
	Periodicity Periodicity    `json:"periodicity"`
}

// EnvelopeAnalyzer runs the envelope sub-analyses on partial columns.
// It is immutable after construction and safe for concurrent use.
type EnvelopeAnalyzer struct {
	params EnvelopeParams
}

// NewEnvelopeAnalyzer creates an analyzer with validated parameters
func NewEnvelopeAnalyzer(params EnvelopeParams) (*EnvelopeAnalyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &EnvelopeAnalyzer{params: params}, nil
}

// Analyze profiles one partial. times, amps and freqs are aligned per frame;
// amps at or below the silence floor mark frames where the partial is absent.
// A partial with no present frame yields a silent record with zeroed
// statistics.
func (ea *EnvelopeAnalyzer) Analyze(partial int, times, amps, freqs []float64) *EnvelopeAnalysis {
	n := min(len(times), len(amps))
	times, amps = times[:n], amps[:n]

	analysis := &EnvelopeAnalysis{
		Partial:  partial,
		Smoothed: Smooth(amps, ea.params.SmoothingWindow),
		Peaks:    EnvelopePeaks{Indices: []int{}, Times: []float64{}, Values: []float64{}},
		Rhythm:   Rhythm{Intervals: []float64{}},
		Segments: []Segment{},
		Dynamics: emptyDynamics(),
	}

	analysis.Amplitude = ComputeAmplitudeStats(amps, ea.params.SilenceFloorDB)
	if analysis.Amplitude.Count == 0 {
		analysis.Shape = ShapeSilent
		return analysis
	}

	analysis.Frequency = ComputeFrequencyStats(freqs, amps, ea.params.SilenceFloorDB)
	analysis.Peaks = DetectPeaks(times, analysis.Smoothed, amps, ea.params.SilenceFloorDB, ea.params.MinPeakDistance)
	analysis.Rhythm = RhythmStats(analysis.Peaks.Times)
	analysis.Segments = SegmentByActivity(times, amps, ea.params.ActivityThresholdDB, ea.params.MinSegmentDuration)
	analysis.Dynamics = AnalyzeDynamics(times, analysis.Smoothed, ea.params)
	analysis.Periodicity = DetectPeriodicity(times, amps, ea.params)
	analysis.Shape = ClassifyShape(analysis.Amplitude, analysis.Segments)

	return analysis
}
