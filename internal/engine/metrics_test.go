package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFormatMetricsListsEveryKey(t *testing.T) {
	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(metricKeys), out)
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want key %q", i, lines[i], k)
		}
	}
}

func TestIncrementors(t *testing.T) {
	before := GetMetrics()
	IncrRuns()
	IncrRunsBusy()
	IncrExports()
	after := GetMetrics()
	for _, k := range []string{"runs", "runs_busy", "exports"} {
		if after[k]-before[k] != 1 {
			t.Errorf("%s delta = %d, want 1", k, after[k]-before[k])
		}
	}
}

func TestTrackOperationPassesError(t *testing.T) {
	want := errors.New("boom")
	called := false
	err := TrackOperation(context.Background(), "op", func(context.Context) error {
		called = true
		return want
	})
	if !called {
		t.Fatal("fn not called")
	}
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want %v", err, want)
	}
}
