package spectral

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is returned for structurally invalid analysis
// parameters. It is always wrapped with the offending values.
var ErrInvalidParameters = errors.New("invalid parameters")

// FrameParams controls how the sample buffer is sliced into analysis frames
type FrameParams struct {
	WindowSize int `json:"window_size"` // samples per frame
	HopSize    int `json:"hop_size"`    // samples between frame starts
	MaxFrames  int `json:"max_frames"`  // cap on generated frames, 0 = no cap
}

// DefaultFrameParams returns the default framing: 4096-sample windows, 50% overlap
func DefaultFrameParams() FrameParams {
	return FrameParams{
		WindowSize: 4096,
		HopSize:    2048,
		MaxFrames:  0,
	}
}

// Validate checks the parameters independently of any buffer
func (p FrameParams) Validate() error {
	if p.WindowSize <= 0 {
		return fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidParameters, p.WindowSize)
	}
	if p.HopSize <= 0 {
		return fmt.Errorf("%w: hop size must be positive, got %d", ErrInvalidParameters, p.HopSize)
	}
	if p.HopSize > p.WindowSize {
		return fmt.Errorf("%w: hop size %d exceeds window size %d", ErrInvalidParameters, p.HopSize, p.WindowSize)
	}
	if p.MaxFrames < 0 {
		return fmt.Errorf("%w: max frames must not be negative, got %d", ErrInvalidParameters, p.MaxFrames)
	}
	return nil
}

// Frame is one analysis window borrowed from the source buffer
type Frame struct {
	Index   int
	Start   int       // sample offset of the first sample
	Time    float64   // Start / sampleRate, seconds
	Samples []float64 // view into the caller's buffer, must not be modified
}

// FrameSource slices a sample buffer into overlapping, fully populated frames.
// A trailing frame that would run past the end of the buffer is dropped.
type FrameSource struct {
	samples    []float64
	sampleRate int
	params     FrameParams
	numFrames  int
}

// NewFrameSource validates the framing against the buffer
func NewFrameSource(samples []float64, sampleRate int, params FrameParams) (*FrameSource, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameters, sampleRate)
	}
	if params.WindowSize >= len(samples) {
		return nil, fmt.Errorf("%w: window size %d must be smaller than buffer length %d",
			ErrInvalidParameters, params.WindowSize, len(samples))
	}

	numFrames := (len(samples)-params.WindowSize)/params.HopSize + 1
	if params.MaxFrames > 0 {
		numFrames = min(numFrames, params.MaxFrames)
	}

	return &FrameSource{
		samples:    samples,
		sampleRate: sampleRate,
		params:     params,
		numFrames:  numFrames,
	}, nil
}

// NumFrames returns the number of complete frames
func (fs *FrameSource) NumFrames() int {
	return fs.numFrames
}

// Frame returns frame i (0-indexed). It panics if i is out of range.
func (fs *FrameSource) Frame(i int) Frame {
	if i < 0 || i >= fs.numFrames {
		panic(fmt.Sprintf("spectral: frame index %d out of range [0, %d)", i, fs.numFrames))
	}

	start := i * fs.params.HopSize
	return Frame{
		Index:   i,
		Start:   start,
		Time:    float64(start) / float64(fs.sampleRate),
		Samples: fs.samples[start : start+fs.params.WindowSize : start+fs.params.WindowSize],
	}
}

// Times returns the ascending frame timestamps in seconds
func (fs *FrameSource) Times() []float64 {
	times := make([]float64, fs.numFrames)
	for i := range times {
		times[i] = float64(i*fs.params.HopSize) / float64(fs.sampleRate)
	}
	return times
}
