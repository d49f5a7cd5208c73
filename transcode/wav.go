package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-partials/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for input that is not PCM WAV
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// wavFormatPCM is the fmt chunk tag of integer PCM
const wavFormatPCM = 1

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64     `json:"-"` // mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`  // channel count of the source, before downmix
	BitDepth   int           `json:"bit_depth"` // bits per sample of the source
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source,omitempty"`
}

// DecodeWAVFile decodes a PCM WAV file into mono float samples
func DecodeWAVFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	data, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	data.Source = path

	return data, nil
}

// DecodeWAV decodes PCM WAV from r. Multi-channel input is averaged to mono.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeWAV",
	})

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV stream", ErrUnsupportedFormat)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV audio format %d, only integer PCM is read", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format chunk", ErrUnsupportedFormat)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	pcm := downmix(buf, bitDepth)
	data := &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   bitDepth,
		Duration:   time.Duration(float64(len(pcm)) / float64(buf.Format.SampleRate) * float64(time.Second)),
	}

	logger.Debug("WAV decoded", logging.Fields{
		"samples":     len(pcm),
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"bit_depth":   bitDepth,
	})

	return data, nil
}

// downmix averages interleaved channels and scales to [-1, 1].
// 8-bit WAV samples are unsigned and centered on 128.
func downmix(buf *audio.IntBuffer, bitDepth int) []float64 {
	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	scale := float64(int64(1) << (bitDepth - 1))

	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	pcm := make([]float64, frames)
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c] - offset
		}
		pcm[i] = float64(sum) / float64(channels) / scale
	}

	return pcm
}
