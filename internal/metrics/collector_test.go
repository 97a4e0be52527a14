package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/astrokit/nightlog/internal/session"
)

// Package-level metric vars are shared, so the whole package runs one
// collector and asserts on deltas, not absolutes.
var testCollector = NewCollectorWithRegistry("test", prometheus.NewRegistry())

func gatherMap(t *testing.T) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := testCollector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func counterValue(t *testing.T, fams map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf, ok := fams[name]
	if !ok {
		return 0
	}
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}

func sampleResult() *session.Result {
	a := session.New(session.DefaultOptions(), nil)
	lines := []string{
		"2025-08-12T21:00:00|INFO|1|Sequencer|42|Starting Category: Focuser, Item: RunAutofocus",
		"2025-08-12T21:00:45|INFO|1|Sequencer|42|AutoFocus completed",
		"2025-08-12T21:01:00|INFO|1|Sequencer|42|Total RMS above threshold (2.1 / 1.1)",
	}
	return a.Analyze(strings.Join(lines, "\n") + "\n")
}

func TestCollector_RecordResult(t *testing.T) {
	before := gatherMap(t)
	logsBefore := counterValue(t, before, "nightlog_logs_analyzed_total")
	linesBefore := counterValue(t, before, "nightlog_lines_total")
	burstsBefore := counterValue(t, before, "nightlog_rms_bursts_total")

	testCollector.RecordResult(sampleResult(), 50*time.Millisecond)

	after := gatherMap(t)
	if got := counterValue(t, after, "nightlog_logs_analyzed_total") - logsBefore; got != 1 {
		t.Errorf("logs_analyzed delta = %v, want 1", got)
	}
	if got := counterValue(t, after, "nightlog_lines_total") - linesBefore; got != 3 {
		t.Errorf("lines_total delta = %v, want 3", got)
	}
	if got := counterValue(t, after, "nightlog_rms_bursts_total") - burstsBefore; got != 1 {
		t.Errorf("rms_bursts delta = %v, want 1", got)
	}

	// Segment seconds carry the focus duration.
	mf, ok := after["nightlog_segment_seconds_total"]
	if !ok {
		t.Fatal("nightlog_segment_seconds_total missing")
	}
	found := false
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "label" && lp.GetValue() == "focus" {
				found = true
			}
		}
	}
	if !found {
		t.Error("no segment_seconds sample with label=focus")
	}
}

func TestCollector_RecordError(t *testing.T) {
	before := testCollector.GenerateSummary()
	testCollector.RecordError()
	after := testCollector.GenerateSummary()

	if after.Errors != before.Errors+1 {
		t.Errorf("Errors = %d, want %d", after.Errors, before.Errors+1)
	}
}

func TestCollector_GenerateSummary(t *testing.T) {
	before := testCollector.GenerateSummary()
	testCollector.RecordResult(sampleResult(), 10*time.Millisecond)
	after := testCollector.GenerateSummary()

	if after.LogsAnalyzed != before.LogsAnalyzed+1 {
		t.Errorf("LogsAnalyzed = %d, want %d", after.LogsAnalyzed, before.LogsAnalyzed+1)
	}
	if after.ProductiveSeconds != before.ProductiveSeconds+45.0 {
		t.Errorf("ProductiveSeconds = %v, want %v", after.ProductiveSeconds, before.ProductiveSeconds+45.0)
	}
	if after.MaxPeakRMS < 2.1 {
		t.Errorf("MaxPeakRMS = %v, want >= 2.1", after.MaxPeakRMS)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	testCollector.RecordResult(sampleResult(), 10*time.Millisecond)

	path := filepath.Join(t.TempDir(), "nightlog.prom")
	if err := testCollector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"# HELP nightlog_logs_analyzed_total",
		"# TYPE nightlog_logs_analyzed_total counter",
		"nightlog_info{version=\"test\"} 1",
		"nightlog_segment_seconds_total{label=\"focus\"}",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exported file missing %q", want)
		}
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the exported file, found %d entries", len(entries))
	}
}

func TestCollector_WriteTextfile_BadDir(t *testing.T) {
	err := testCollector.WriteTextfile("/nonexistent-dir-for-test/nightlog.prom")
	if err == nil {
		t.Error("expected error writing to nonexistent directory")
	}
}
