// Package stats aggregates analysis results across a batch of logs.
//
// A batch is usually one log per night; the aggregate answers questions
// like "how efficient was this week" and "which night had the worst
// guiding" without re-reading the per-file reports.
package stats

import (
	"time"

	"github.com/astrokit/nightlog/internal/session"
)

// BatchStats holds metrics across all analyzed logs.
//
// This is a snapshot - values are computed at the time of the
// Aggregate() call.
type BatchStats struct {
	// Timestamp when this snapshot was taken
	Timestamp time.Time

	// File counts
	TotalFiles  int
	FailedFiles int

	// Time totals across the batch (seconds)
	TotalsSeconds     map[string]float64
	ProductiveSeconds float64
	IdleSeconds       float64
	EfficiencyPct     float64 // productive / (productive + idle)

	// Guiding across the batch
	TotalRMSEvents int
	TotalRMSBursts int
	MaxPeakRMS     float64

	// Extremes (empty when no file succeeded)
	BestFile  string // highest efficiency
	WorstFile string // lowest efficiency
}

// FileStats is the per-file slice of a batch that the aggregator
// consumes. Callers map their result type into this; the aggregator has
// no opinion on where results come from.
type FileStats struct {
	Path              string
	Failed            bool
	TotalsSeconds     map[string]float64
	ProductiveSeconds float64
	IdleSeconds       float64
	RMSEvents         int
	RMSBursts         int
	MaxPeakRMS        float64
}

// FromResult maps one analysis result into its batch slice. A nil
// result (the file failed to read or parse) is marked Failed.
func FromResult(path string, res *session.Result) FileStats {
	if res == nil {
		return FileStats{Path: path, Failed: true}
	}
	return FileStats{
		Path:              path,
		TotalsSeconds:     res.TotalsSeconds,
		ProductiveSeconds: res.ProductiveSeconds,
		IdleSeconds:       res.IdleSeconds,
		RMSEvents:         res.RMSAnalysis.TotalEventCount,
		RMSBursts:         res.RMSAnalysis.TotalBurstCount,
		MaxPeakRMS:        res.RMSAnalysis.MaxPeakRMS,
	}
}

// Aggregate combines per-file stats into a batch snapshot.
func Aggregate(files []FileStats) *BatchStats {
	b := &BatchStats{
		Timestamp:     time.Now(),
		TotalFiles:    len(files),
		TotalsSeconds: make(map[string]float64),
	}

	bestEff, worstEff := -1.0, 2.0
	for _, f := range files {
		if f.Failed {
			b.FailedFiles++
			continue
		}

		for label, secs := range f.TotalsSeconds {
			b.TotalsSeconds[label] += secs
		}
		b.ProductiveSeconds += f.ProductiveSeconds
		b.IdleSeconds += f.IdleSeconds

		b.TotalRMSEvents += f.RMSEvents
		b.TotalRMSBursts += f.RMSBursts
		if f.MaxPeakRMS > b.MaxPeakRMS {
			b.MaxPeakRMS = f.MaxPeakRMS
		}

		if eff, ok := efficiency(f); ok {
			if eff > bestEff {
				bestEff = eff
				b.BestFile = f.Path
			}
			if eff < worstEff {
				worstEff = eff
				b.WorstFile = f.Path
			}
		}
	}

	if total := b.ProductiveSeconds + b.IdleSeconds; total > 0 {
		b.EfficiencyPct = 100 * b.ProductiveSeconds / total
	}

	return b
}

// efficiency returns the productive fraction for one file; ok is false
// when the file recorded no activity at all.
func efficiency(f FileStats) (float64, bool) {
	total := f.ProductiveSeconds + f.IdleSeconds
	if total <= 0 {
		return 0, false
	}
	return f.ProductiveSeconds / total, true
}
