package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  Level
		known bool
	}{
		{"debug", DebugLevel, true},
		{"INFO", InfoLevel, true},
		{"", InfoLevel, true},
		{"warning", WarnLevel, true},
		{" error ", ErrorLevel, true},
		{"verbose", InfoLevel, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.name)
		if got != tt.want || ok != tt.known {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.known)
		}
	}
}

func TestDefaultLoggerRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewWriterLogger(&stdout, &stderr, false)

	logger.Debug("hidden")
	logger.Info("frames built", Fields{"frames": 42})
	logger.Error(errors.New("boom"), "stage failed")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("debug message should be filtered at InfoLevel")
	}
	if !strings.Contains(stdout.String(), "[INFO] frames built frames=42") {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "[ERROR] stage failed: boom") {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestWithFieldsSharesLevel(t *testing.T) {
	var stdout bytes.Buffer
	parent := NewWriterLogger(&stdout, &stdout, false)
	child := parent.WithFields(Fields{"component": "builder"})

	parent.SetLevel(DebugLevel)
	child.Debug("tick")

	if !strings.Contains(stdout.String(), "component=builder") {
		t.Errorf("child logger lost fields or level: %q", stdout.String())
	}
}

func TestWithContextFields(t *testing.T) {
	var stdout bytes.Buffer
	logger := NewWriterLogger(&stdout, &stdout, false)

	ctx := ContextWithFields(context.Background(), Fields{"run": "abc"})
	logger.WithContext(ctx).Info("start")

	if !strings.Contains(stdout.String(), "run=abc") {
		t.Errorf("context fields missing: %q", stdout.String())
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Fatalf("expected NoOpLogger, got %T", GetGlobalLogger())
	}
}
