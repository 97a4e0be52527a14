package stats

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/astrokit/nightlog/internal/session"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAggregate_Empty(t *testing.T) {
	b := Aggregate(nil)

	if b.TotalFiles != 0 || b.FailedFiles != 0 {
		t.Errorf("file counts = %d/%d, want 0/0", b.TotalFiles, b.FailedFiles)
	}
	if b.EfficiencyPct != 0 {
		t.Errorf("EfficiencyPct = %v, want 0", b.EfficiencyPct)
	}
	if b.BestFile != "" || b.WorstFile != "" {
		t.Errorf("extremes = %q/%q, want empty", b.BestFile, b.WorstFile)
	}
	if b.TotalsSeconds == nil {
		t.Error("TotalsSeconds should be non-nil")
	}
}

func TestAggregate_SumsAcrossFiles(t *testing.T) {
	files := []FileStats{
		{
			Path:              "night1.log",
			TotalsSeconds:     map[string]float64{"capture": 300, "wait": 100},
			ProductiveSeconds: 300,
			IdleSeconds:       100,
			RMSEvents:         5,
			RMSBursts:         2,
			MaxPeakRMS:        1.8,
		},
		{
			Path:              "night2.log",
			TotalsSeconds:     map[string]float64{"capture": 200, "focus": 50},
			ProductiveSeconds: 250,
			IdleSeconds:       250,
			RMSEvents:         3,
			RMSBursts:         1,
			MaxPeakRMS:        2.4,
		},
	}

	b := Aggregate(files)

	if b.TotalFiles != 2 || b.FailedFiles != 0 {
		t.Errorf("file counts = %d/%d, want 2/0", b.TotalFiles, b.FailedFiles)
	}
	if !approxEqual(b.TotalsSeconds["capture"], 500) {
		t.Errorf("capture total = %v, want 500", b.TotalsSeconds["capture"])
	}
	if !approxEqual(b.TotalsSeconds["focus"], 50) {
		t.Errorf("focus total = %v, want 50", b.TotalsSeconds["focus"])
	}
	if !approxEqual(b.ProductiveSeconds, 550) || !approxEqual(b.IdleSeconds, 350) {
		t.Errorf("productive/idle = %v/%v, want 550/350", b.ProductiveSeconds, b.IdleSeconds)
	}
	// 550 / 900
	if !approxEqual(b.EfficiencyPct, 100*550.0/900.0) {
		t.Errorf("EfficiencyPct = %v", b.EfficiencyPct)
	}
	if b.TotalRMSEvents != 8 || b.TotalRMSBursts != 3 {
		t.Errorf("RMS counts = %d/%d, want 8/3", b.TotalRMSEvents, b.TotalRMSBursts)
	}
	if !approxEqual(b.MaxPeakRMS, 2.4) {
		t.Errorf("MaxPeakRMS = %v, want 2.4", b.MaxPeakRMS)
	}
	// night1: 75% productive, night2: 50%
	if b.BestFile != "night1.log" {
		t.Errorf("BestFile = %q, want night1.log", b.BestFile)
	}
	if b.WorstFile != "night2.log" {
		t.Errorf("WorstFile = %q, want night2.log", b.WorstFile)
	}
}

func TestAggregate_FailedFilesExcluded(t *testing.T) {
	files := []FileStats{
		{Path: "bad.log", Failed: true},
		{
			Path:              "good.log",
			TotalsSeconds:     map[string]float64{"capture": 100},
			ProductiveSeconds: 100,
		},
	}

	b := Aggregate(files)

	if b.TotalFiles != 2 || b.FailedFiles != 1 {
		t.Errorf("file counts = %d/%d, want 2/1", b.TotalFiles, b.FailedFiles)
	}
	if !approxEqual(b.ProductiveSeconds, 100) {
		t.Errorf("ProductiveSeconds = %v, want 100", b.ProductiveSeconds)
	}
	if b.BestFile != "good.log" || b.WorstFile != "good.log" {
		t.Errorf("extremes = %q/%q, want good.log for both", b.BestFile, b.WorstFile)
	}
}

func TestAggregate_NoActivityFileSkippedForExtremes(t *testing.T) {
	files := []FileStats{
		{Path: "empty.log", TotalsSeconds: map[string]float64{}},
		{
			Path:          "real.log",
			TotalsSeconds: map[string]float64{"wait": 60},
			IdleSeconds:   60,
		},
	}

	b := Aggregate(files)

	if b.BestFile != "real.log" || b.WorstFile != "real.log" {
		t.Errorf("extremes = %q/%q, want real.log for both", b.BestFile, b.WorstFile)
	}
	if b.EfficiencyPct != 0 {
		t.Errorf("EfficiencyPct = %v, want 0", b.EfficiencyPct)
	}
}

func TestFromResult(t *testing.T) {
	log := fmt.Sprintf("%s\n%s\n",
		"2025-08-12T21:00:00|INFO|1|Sequencer|42|Starting Category: Focuser, Item: RunAutofocus",
		"2025-08-12T21:00:45|INFO|1|Sequencer|42|AutoFocus completed",
	)
	analyzer := session.New(session.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	res := analyzer.Analyze(log)

	fs := FromResult("night.log", res)
	if fs.Failed {
		t.Fatal("FromResult marked a successful result as failed")
	}
	if fs.Path != "night.log" {
		t.Errorf("Path = %q", fs.Path)
	}
	if !approxEqual(fs.ProductiveSeconds, 45) {
		t.Errorf("ProductiveSeconds = %v, want 45", fs.ProductiveSeconds)
	}
	if !approxEqual(fs.TotalsSeconds["focus"], 45) {
		t.Errorf("focus total = %v, want 45", fs.TotalsSeconds["focus"])
	}
}

func TestFromResult_NilResult(t *testing.T) {
	fs := FromResult("missing.log", nil)
	if !fs.Failed {
		t.Error("nil result should be marked failed")
	}
	if fs.Path != "missing.log" {
		t.Errorf("Path = %q", fs.Path)
	}
}
