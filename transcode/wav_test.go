package transcode

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWAV(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()
	writeWAVFormat(t, path, sampleRate, 16, channels, 1, data)
}

func writeWAVFormat(t *testing.T, path string, sampleRate, bitDepth, channels, audioFormat int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, bitDepth, channels, audioFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestDecodeWAVFileMono(t *testing.T) {
	const sampleRate = 8000
	data := make([]int, sampleRate/2)
	for i := range data {
		data[i] = int(16384 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, sampleRate, 1, data)

	decoded, err := DecodeWAVFile(path)
	if err != nil {
		t.Fatalf("DecodeWAVFile: %v", err)
	}

	if decoded.SampleRate != sampleRate || decoded.Channels != 1 || decoded.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d channels, %d bit", decoded.SampleRate, decoded.Channels, decoded.BitDepth)
	}
	if len(decoded.PCM) != len(data) {
		t.Fatalf("samples = %d, want %d", len(decoded.PCM), len(data))
	}
	for i, v := range decoded.PCM {
		if want := float64(data[i]) / 32768; math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
	if decoded.Duration.Seconds() != 0.5 {
		t.Errorf("duration = %v, want 500ms", decoded.Duration)
	}
	if decoded.Source != path {
		t.Errorf("source = %q", decoded.Source)
	}
}

func TestDecodeWAVFileStereoDownmix(t *testing.T) {
	// left at +half scale, right silent
	data := make([]int, 2*100)
	for i := 0; i < len(data); i += 2 {
		data[i] = 16384
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 16000, 2, data)

	decoded, err := DecodeWAVFile(path)
	if err != nil {
		t.Fatalf("DecodeWAVFile: %v", err)
	}

	if decoded.Channels != 2 || len(decoded.PCM) != 100 {
		t.Fatalf("channels = %d, samples = %d", decoded.Channels, len(decoded.PCM))
	}
	for i, v := range decoded.PCM {
		if v != 0.25 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestDecodeWAVRejectsOtherFormats(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a riff stream")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	if _, err := DecodeWAVFile(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDecodeWAVFile8Bit(t *testing.T) {
	// unsigned: 128 is silence, 0 and 255 the extremes
	data := []int{128, 128, 192, 64, 0, 255}
	want := []float64{0, 0, 0.5, -0.5, -1, 127.0 / 128}

	path := filepath.Join(t.TempDir(), "u8.wav")
	writeWAVFormat(t, path, 8000, 8, 1, 1, data)

	decoded, err := DecodeWAVFile(path)
	if err != nil {
		t.Fatalf("DecodeWAVFile: %v", err)
	}
	if decoded.BitDepth != 8 || len(decoded.PCM) != len(want) {
		t.Fatalf("bit depth = %d, samples = %d", decoded.BitDepth, len(decoded.PCM))
	}
	for i, v := range decoded.PCM {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Errorf("sample %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestDecodeWAVFileRejectsFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	writeWAVFormat(t, path, 8000, 32, 1, 3, make([]int, 100))

	if _, err := DecodeWAVFile(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
