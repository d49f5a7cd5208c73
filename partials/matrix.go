package partials

import (
	"fmt"

	"github.com/RyanBlaney/sonido-partials/algorithms/spectral"
)

// ErrInvalidParameters is returned when framing, peak or envelope parameters
// are out of range
var ErrInvalidParameters = spectral.ErrInvalidParameters

// PartialMatrix holds the per-frame spectral peaks of a recording.
//
// Row i describes frame i. Its first PartialsPerFrame[i] entries are peaks
// in ascending frequency order; every later entry is exactly zero in both
// Freqs and Amps. The matrix is read-only once built.
type PartialMatrix struct {
	Times            []float64   `json:"times"` // seconds, ascending
	Freqs            [][]float64 `json:"freqs"` // Hz
	Amps             [][]float64 `json:"amps"`  // dBFS
	PartialsPerFrame []int       `json:"partials_per_frame"`
	MaxPartials      int         `json:"max_partials"`

	SampleRate int `json:"sample_rate"`
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`
}

func newPartialMatrix(numFrames, maxPartials int) *PartialMatrix {
	m := &PartialMatrix{
		Times:            make([]float64, numFrames),
		Freqs:            make([][]float64, numFrames),
		Amps:             make([][]float64, numFrames),
		PartialsPerFrame: make([]int, numFrames),
		MaxPartials:      maxPartials,
	}

	// one backing array per matrix keeps rows contiguous
	freqCells := make([]float64, numFrames*maxPartials)
	ampCells := make([]float64, numFrames*maxPartials)
	for i := range numFrames {
		m.Freqs[i] = freqCells[i*maxPartials : (i+1)*maxPartials : (i+1)*maxPartials]
		m.Amps[i] = ampCells[i*maxPartials : (i+1)*maxPartials : (i+1)*maxPartials]
	}

	return m
}

// NumFrames returns the number of rows
func (m *PartialMatrix) NumFrames() int {
	return len(m.Times)
}

// setRow stores one frame's peaks. Rows are written by exactly one worker.
func (m *PartialMatrix) setRow(i int, time float64, freqs, amps []float64) {
	m.Times[i] = time
	m.PartialsPerFrame[i] = copy(m.Freqs[i], freqs)
	copy(m.Amps[i], amps[:m.PartialsPerFrame[i]])
}

// trim drops every row from n on
func (m *PartialMatrix) trim(n int) {
	if n >= len(m.Times) {
		return
	}
	m.Times = m.Times[:n]
	m.Freqs = m.Freqs[:n]
	m.Amps = m.Amps[:n]
	m.PartialsPerFrame = m.PartialsPerFrame[:n]
}

// Column returns partial j across all frames. Frames where the partial is
// absent get fill as their level and 0 Hz as their frequency; pass a level at
// or below the silence floor so absent frames are not read as 0 dBFS.
func (m *PartialMatrix) Column(j int, fill float64) (freqs, amps []float64) {
	freqs = make([]float64, m.NumFrames())
	amps = make([]float64, m.NumFrames())
	for i := range m.NumFrames() {
		if j < m.PartialsPerFrame[i] {
			freqs[i] = m.Freqs[i][j]
			amps[i] = m.Amps[i][j]
		} else {
			amps[i] = fill
		}
	}
	return freqs, amps
}

// ActivePartials returns one past the highest column that holds a peak in any frame
func (m *PartialMatrix) ActivePartials() int {
	active := 0
	for _, n := range m.PartialsPerFrame {
		active = max(active, n)
	}
	return active
}

// Validate checks the row invariants
func (m *PartialMatrix) Validate() error {
	n := len(m.Times)
	if len(m.Freqs) != n || len(m.Amps) != n || len(m.PartialsPerFrame) != n {
		return fmt.Errorf("partial matrix: inconsistent row counts %d/%d/%d/%d",
			n, len(m.Freqs), len(m.Amps), len(m.PartialsPerFrame))
	}

	for i := range n {
		if i > 0 && m.Times[i] <= m.Times[i-1] {
			return fmt.Errorf("partial matrix: time axis not ascending at frame %d", i)
		}

		count := m.PartialsPerFrame[i]
		if count < 0 || count > m.MaxPartials {
			return fmt.Errorf("partial matrix: frame %d has %d partials, max %d", i, count, m.MaxPartials)
		}
		if len(m.Freqs[i]) != m.MaxPartials || len(m.Amps[i]) != m.MaxPartials {
			return fmt.Errorf("partial matrix: frame %d row width differs from %d", i, m.MaxPartials)
		}

		for j := range m.MaxPartials {
			if j < count {
				if j > 0 && m.Freqs[i][j] <= m.Freqs[i][j-1] {
					return fmt.Errorf("partial matrix: frame %d frequencies not ascending at %d", i, j)
				}
				continue
			}
			if m.Freqs[i][j] != 0 || m.Amps[i][j] != 0 {
				return fmt.Errorf("partial matrix: frame %d padding at %d is not zero", i, j)
			}
		}
	}

	return nil
}
