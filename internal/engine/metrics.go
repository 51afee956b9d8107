package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Runs               atomic.Int64
	RunsBusy           atomic.Int64
	RunErrors          atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	Exports            atomic.Int64
	ExportErrors       atomic.Int64
}

var metricKeys = []string{
	"runs", "runs_busy", "run_errors",
	"transcript_requests", "transcript_errors",
	"llm_calls", "llm_errors",
	"exports", "export_errors",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"runs":                metrics.Runs.Load(),
		"runs_busy":           metrics.RunsBusy.Load(),
		"run_errors":          metrics.RunErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"exports":             metrics.Exports.Load(),
		"export_errors":       metrics.ExportErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for notes/ and sources/ sub-packages.
func IncrRuns()               { metrics.Runs.Add(1) }
func IncrRunsBusy()           { metrics.RunsBusy.Add(1) }
func IncrRunErrors()          { metrics.RunErrors.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrExports()            { metrics.Exports.Add(1) }
func IncrExportErrors()       { metrics.ExportErrors.Add(1) }

// SlowThreshold is the duration after which TrackOperation logs a warning.
var SlowThreshold = 5 * time.Second

// TrackOperation logs a warning if an operation takes longer than SlowThreshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > SlowThreshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	} else {
		slog.Debug("operation done", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
