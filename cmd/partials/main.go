// Command partials tracks the spectral partials of a mono recording and
// analyzes their envelopes.
//
// Usage:
//
//	partials [flags] input.wav
//
// The full result is written as JSON. With -summary a per-partial table is
// printed instead.
//
// Examples:
//
//	partials tone.wav > tone.json
//	partials -window 2048 -hop 512 -max-partials 12 -o violin.json violin.wav
//	partials -config analysis.json -summary bell.wav
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/RyanBlaney/sonido-partials/algorithms/filters"
	"github.com/RyanBlaney/sonido-partials/logging"
	"github.com/RyanBlaney/sonido-partials/partials"
	"github.com/RyanBlaney/sonido-partials/partials/config"
	"github.com/RyanBlaney/sonido-partials/transcode"
)

// report is the JSON document written for one input file
type report struct {
	Audio  *transcode.AudioData   `json:"audio"`
	Config *config.AnalysisConfig `json:"config"`
	Result *partials.Result       `json:"result"`
}

// progressObserver logs progress at debug level every tenth of the work
type progressObserver struct {
	logger logging.Logger
}

func (p progressObserver) FrameDone(index, total, peaks int) {
	if step := max(total/10, 1); index%step == 0 {
		p.logger.Debug("Frame analyzed", logging.Fields{"frame": index, "total": total, "peaks": peaks})
	}
}

func (p progressObserver) PartialDone(index, total int) {
	p.logger.Debug("Partial analyzed", logging.Fields{"partial": index, "total": total})
}

func main() {
	configPath := flag.String("config", "", "JSON analysis config; unset fields keep their defaults")
	output := flag.String("o", "", "write the JSON report to this file instead of stdout")
	summary := flag.Bool("summary", false, "print a per-partial table instead of JSON")
	window := flag.Int("window", 0, "analysis window in samples (overrides config)")
	hop := flag.Int("hop", 0, "hop size in samples (overrides config)")
	maxPartials := flag.Int("max-partials", 0, "peaks kept per frame (overrides config)")
	interpolate := flag.Bool("interpolate", false, "refine peak frequencies by parabolic interpolation")
	dcCutoff := flag.Float64("dc-cutoff", 0, "remove DC with a blocker at this cutoff in Hz before analysis, 0 = off")
	workers := flag.Int("workers", -1, "worker goroutines, 0 = one per CPU (overrides config)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: partials [flags] input.wav\n\n")
		fmt.Fprintf(os.Stderr, "Tracks spectral partials and analyzes their envelopes.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level, ok := logging.ParseLevel(*logLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
		os.Exit(2)
	}
	// keep stdout clean for the report
	logging.SetGlobalLogger(logging.NewWriterLogger(os.Stderr, os.Stderr, false))
	logging.SetLevel(level)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail(err)
	}
	if *window > 0 {
		cfg.Frames.WindowSize = *window
	}
	if *hop > 0 {
		cfg.Frames.HopSize = *hop
	}
	if *maxPartials > 0 {
		cfg.Peaks.MaxPartials = *maxPartials
	}
	if *interpolate {
		cfg.Peaks.Interpolate = true
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := run(ctx, flag.Arg(0), cfg, *dcCutoff)
	if err != nil {
		fail(err)
	}

	if err := writeReport(*output, *summary, rep); err != nil {
		fail(err)
	}
}

// writeReport writes rep to path, or to stdout when path is empty
func writeReport(path string, summary bool, rep *report) error {
	write := writeJSON
	if summary {
		write = writeSummary
	}

	if path == "" {
		return write(os.Stdout, rep)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := write(f, rep); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	return config.LoadFile(path)
}

func run(ctx context.Context, path string, cfg *config.AnalysisConfig, dcCutoff float64) (*report, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "cli",
		"input":     path,
	})

	audio, err := transcode.DecodeWAVFile(path)
	if err != nil {
		return nil, err
	}

	if dcCutoff > 0 {
		dc, err := filters.NewDCRemoval(audio.SampleRate, dcCutoff)
		if err != nil {
			return nil, err
		}
		audio.PCM = dc.Process(audio.PCM)
		logger.Debug("DC removed", logging.Fields{"cutoff_hz": dcCutoff, "pole": dc.Pole()})
	}

	analyzer, err := partials.NewAnalyzer(cfg, partials.WithObserver(progressObserver{logger: logger}))
	if err != nil {
		return nil, err
	}

	result, err := analyzer.Run(ctx, audio.PCM, audio.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return &report{Audio: audio, Config: cfg, Result: result}, nil
}

func writeJSON(w io.Writer, rep *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeSummary(w io.Writer, rep *report) error {
	res := rep.Result
	fmt.Fprintf(w, "%s: %d Hz, %v, %d frames\n", rep.Audio.Source, rep.Audio.SampleRate, rep.Audio.Duration, res.Matrix.NumFrames())
	if res.Fundamental.Detected() {
		fmt.Fprintf(w, "fundamental: %.2f Hz (score %.3f)\n\n", res.Fundamental.Frequency, res.Fundamental.Score)
	} else {
		fmt.Fprintf(w, "fundamental: not detected\n\n")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "partial\tshape\tfreq Hz\tmean dB\tmax dB\tpeaks\tsegments\tperiod s\tconfidence\t")
	for _, env := range res.Envelopes {
		if env.Amplitude.Count == 0 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%d\t%d\t%.3f\t%.2f\t\n",
			env.Partial, env.Shape, env.Frequency.Mean, env.Amplitude.Mean, env.Amplitude.Max,
			len(env.Peaks.Times), len(env.Segments), env.Periodicity.Period, env.Periodicity.Confidence)
	}
	return tw.Flush()
}

func fail(err error) {
	logging.Error(err, "partials failed")
	os.Exit(1)
}
