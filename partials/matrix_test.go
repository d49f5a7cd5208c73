package partials

import (
	"slices"
	"testing"

	"github.com/RyanBlaney/sonido-partials/partials/config"
)

func TestPartialMatrixColumn(t *testing.T) {
	m := newPartialMatrix(3, 4)
	m.setRow(0, 0.0, []float64{100, 200}, []float64{-10, -20})
	m.setRow(1, 0.5, []float64{110}, []float64{-12})
	m.setRow(2, 1.0, []float64{120, 210, 330}, []float64{-14, -22, -30})

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	freqs, amps := m.Column(1, -60)
	if !slices.Equal(freqs, []float64{200, 0, 210}) {
		t.Errorf("column 1 freqs = %v", freqs)
	}
	if !slices.Equal(amps, []float64{-20, -60, -22}) {
		t.Errorf("column 1 amps = %v, absent frames should carry the fill level", amps)
	}

	if m.ActivePartials() != 3 {
		t.Errorf("ActivePartials = %d, want 3", m.ActivePartials())
	}

	// the stored row keeps zero padding regardless of the fill level
	if m.Amps[1][1] != 0 || m.Freqs[1][1] != 0 {
		t.Errorf("padding modified: %v %v", m.Freqs[1], m.Amps[1])
	}
}

func TestPartialMatrixValidateRejectsBrokenRows(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(m *PartialMatrix)
	}{
		{"non-zero padding", func(m *PartialMatrix) { m.Amps[0][3] = -40 }},
		{"descending frequencies", func(m *PartialMatrix) { m.Freqs[1][0], m.Freqs[1][1] = 300, 200 }},
		{"count over width", func(m *PartialMatrix) { m.PartialsPerFrame[0] = 5 }},
		{"time axis", func(m *PartialMatrix) { m.Times[1] = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPartialMatrix(2, 4)
			m.setRow(0, 0, []float64{100}, []float64{-10})
			m.setRow(1, 0.1, []float64{200, 300}, []float64{-10, -20})
			tt.corrupt(m)

			if err := m.Validate(); err == nil {
				t.Fatal("expected an invariant violation")
			}
		})
	}
}

func TestBuilderFrameCapTrimsMatrix(t *testing.T) {
	cfg := config.DefaultAnalysisConfig()
	cfg.Frames.MaxFrames = 10

	builder, err := NewBuilder(cfg)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	m, err := builder.Build(sine(2, 44100, 440), 44100)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if m.NumFrames() != 10 || len(m.Freqs) != 10 || len(m.Amps) != 10 || len(m.PartialsPerFrame) != 10 {
		t.Fatalf("matrix not trimmed to 10 frames: %d/%d/%d/%d",
			m.NumFrames(), len(m.Freqs), len(m.Amps), len(m.PartialsPerFrame))
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for i, ts := range m.Times {
		want := float64(i*cfg.Frames.HopSize) / 44100
		if ts != want {
			t.Errorf("time %d = %v, want %v", i, ts, want)
		}
	}
}

func TestBuilderSingleWorkerMatchesParallel(t *testing.T) {
	samples := sine(1, 44100, 330, 660, 990)

	build := func(workers int) *PartialMatrix {
		cfg := config.DefaultAnalysisConfig()
		cfg.Workers = workers
		builder, err := NewBuilder(cfg)
		if err != nil {
			t.Fatalf("NewBuilder: %v", err)
		}
		m, err := builder.Build(samples, 44100)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return m
	}

	serial, parallel := build(1), build(8)
	if !slices.Equal(serial.PartialsPerFrame, parallel.PartialsPerFrame) {
		t.Fatalf("partial counts differ: %v vs %v", serial.PartialsPerFrame, parallel.PartialsPerFrame)
	}
	for i := range serial.NumFrames() {
		if !slices.Equal(serial.Freqs[i], parallel.Freqs[i]) || !slices.Equal(serial.Amps[i], parallel.Amps[i]) {
			t.Fatalf("frame %d differs between worker counts", i)
		}
	}
}
