package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf}).WithComponent(ComponentIngest)
	logger.Debug("Row rejected", FieldLine, 3)

	out := buf.String()
	if !strings.Contains(out, "component=ingest") || !strings.Contains(out, "line=3") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: slog.LevelWarn, Output: &buf}).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(DefaultConfig()).WithComponent(ComponentReport)
	got := FromContext(NewContext(context.Background(), logger))
	if got.Component() != ComponentReport {
		t.Fatalf("component %q", got.Component())
	}
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Fatalf("fallback logger should use the app component")
	}
}

func TestFieldsToSliceIsOrdered(t *testing.T) {
	got := NewFields().WithIngest("a.csv", "default", 3, 1).WithComponent(ComponentIngest).ToSlice()
	if got[0] != FieldComponent || got[len(got)-2] != FieldSource {
		t.Fatalf("unexpected order %v", got)
	}
}
