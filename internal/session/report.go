package session

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/influxdata/tdigest"
)

// Result is the complete analysis of one log. Field names are the wire
// shape downstream consumers depend on.
type Result struct {
	TotalsSeconds     map[string]float64 `json:"totals_seconds"`
	ProductiveSeconds float64            `json:"productive_seconds"`
	IdleSeconds       float64            `json:"idle_seconds"`
	Segments          []SegmentReport    `json:"segments"`
	LinesTotal        int                `json:"lines_total"`
	LinesMatched      int                `json:"lines_matched"`
	LinesSkippedTS    int                `json:"lines_skipped_ts"`
	RMSAnalysis       RMSAnalysis        `json:"rms_analysis"`
}

// SegmentReport is one timeline segment in report form.
type SegmentReport struct {
	Start           string            `json:"start"`
	End             string            `json:"end"`
	Label           string            `json:"label"`
	DurationSeconds float64           `json:"duration_seconds"`
	Meta            map[string]string `json:"meta"`
}

// RMSAnalysis is the guiding-RMS burst analysis sub-structure.
type RMSAnalysis struct {
	TotalEventCount   int                    `json:"total_event_count"`
	TotalBurstCount   int                    `json:"total_burst_count"`
	WorstHourByEvents string                 `json:"worst_hour_by_events"`
	WorstHourByBursts string                 `json:"worst_hour_by_bursts"`
	MaxPeakRMS        float64                `json:"max_peak_rms"`
	Bursts            []BurstReport          `json:"bursts"`
	Events            []RMSEventReport       `json:"events"`
	EventsPerHour     map[string]int         `json:"events_per_hour"`
	BurstsPerHour     map[string]int         `json:"bursts_per_hour"`
	Correlation       CorrelationReport      `json:"correlation"`
	SettingsChanges   []SettingsChangeReport `json:"settings_changes"`
	RMSPercentiles    *RMSPercentiles        `json:"rms_percentiles,omitempty"`
}

// BurstReport is one burst in report form.
type BurstReport struct {
	StartTS     string         `json:"start_ts"`
	EndTS       string         `json:"end_ts"`
	DurationSec float64        `json:"duration_sec"`
	EventCount  int            `json:"event_count"`
	PeakRMS     float64        `json:"peak_rms"`
	AvgRMS      float64        `json:"avg_rms"`
	Axes        map[string]int `json:"axes"`
	Tags        []string       `json:"tags"`
}

// RMSEventReport is one RMS threshold violation in report form.
type RMSEventReport struct {
	Timestamp string  `json:"timestamp"`
	Axis      string  `json:"axis"`
	RMS       float64 `json:"rms"`
	Threshold float64 `json:"threshold"`
}

// CorrelationReport summarizes how often bursts landed near dither and
// autofocus activity.
type CorrelationReport struct {
	WindowSeconds    float64 `json:"window_seconds"`
	NearDitherPct    float64 `json:"near_dither_pct"`
	NearAutofocusPct float64 `json:"near_autofocus_pct"`
}

// SettingsChangeReport is one settings transition in report form.
type SettingsChangeReport struct {
	TS          string  `json:"ts"`
	SettingType string  `json:"setting_type"`
	Value       float64 `json:"value"`
	Note        string  `json:"note"`
}

// RMSPercentiles summarizes the distribution of RMS values across all
// threshold violations.
type RMSPercentiles struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

const hourKeyLayout = "2006-01-02T15"

// formatTS renders a timestamp the way the report consumers expect:
// ISO-8601, fractional seconds only when present.
func formatTS(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return fmt.Sprintf("%s.%06d", t.Format("2006-01-02T15:04:05"), t.Nanosecond()/1000)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// buildReport assembles the final result from the pass outputs.
func buildReport(
	diag parseDiag,
	segments []Segment,
	rmsEvents []RMSThresholdEvent,
	bursts []*Burst,
	settings []SettingsChange,
	correlationWindow float64,
) *Result {
	res := &Result{
		TotalsSeconds:  make(map[string]float64),
		Segments:       make([]SegmentReport, 0, len(segments)),
		LinesTotal:     diag.linesTotal,
		LinesMatched:   diag.linesMatched,
		LinesSkippedTS: diag.linesSkippedTS,
		RMSAnalysis: RMSAnalysis{
			Bursts:          make([]BurstReport, 0, len(bursts)),
			Events:          make([]RMSEventReport, 0, len(rmsEvents)),
			EventsPerHour:   make(map[string]int),
			BurstsPerHour:   make(map[string]int),
			SettingsChanges: make([]SettingsChangeReport, 0, len(settings)),
			Correlation:     CorrelationReport{WindowSeconds: correlationWindow},
		},
	}

	totals := make(map[Label]float64)
	for _, s := range segments {
		totals[s.Label] += s.Duration()
		sr := SegmentReport{
			Start:           formatTS(s.Start),
			End:             formatTS(s.End),
			Label:           string(s.Label),
			DurationSeconds: round3(s.Duration()),
			Meta:            map[string]string{},
		}
		if s.Meta != nil {
			sr.Meta = s.Meta.Fields()
		}
		res.Segments = append(res.Segments, sr)
	}

	var productive, idle float64
	for label, secs := range totals {
		res.TotalsSeconds[string(label)] = round3(secs)
		if productiveLabels[label] {
			productive += secs
		} else {
			idle += secs
		}
	}
	res.ProductiveSeconds = round3(productive)
	res.IdleSeconds = round3(idle)

	res.RMSAnalysis.TotalEventCount = len(rmsEvents)
	res.RMSAnalysis.TotalBurstCount = len(bursts)

	var digest *tdigest.TDigest
	if len(rmsEvents) > 0 {
		digest = tdigest.NewWithCompression(100)
	}
	for _, ev := range rmsEvents {
		res.RMSAnalysis.Events = append(res.RMSAnalysis.Events, RMSEventReport{
			Timestamp: formatTS(ev.Timestamp),
			Axis:      string(ev.Axis),
			RMS:       ev.RMS,
			Threshold: ev.Threshold,
		})
		res.RMSAnalysis.EventsPerHour[ev.Timestamp.Format(hourKeyLayout)]++
		digest.Add(ev.RMS, 1)
	}
	if digest != nil {
		res.RMSAnalysis.RMSPercentiles = &RMSPercentiles{
			P50: digest.Quantile(0.50),
			P95: digest.Quantile(0.95),
			P99: digest.Quantile(0.99),
		}
	}

	var nearDither, nearAutofocus int
	for _, b := range bursts {
		peak := b.PeakRMS()
		if peak > res.RMSAnalysis.MaxPeakRMS {
			res.RMSAnalysis.MaxPeakRMS = peak
		}
		axes := make(map[string]int, 3)
		for axis, n := range b.AxisCounts() {
			axes[string(axis)] = n
		}
		tags := make([]string, 0, len(b.Tags))
		for tag := range b.Tags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		if b.Tags["near_dither"] {
			nearDither++
		}
		if b.Tags["near_autofocus"] {
			nearAutofocus++
		}
		res.RMSAnalysis.Bursts = append(res.RMSAnalysis.Bursts, BurstReport{
			StartTS:     formatTS(b.StartTS),
			EndTS:       formatTS(b.EndTS),
			DurationSec: round3(b.Duration()),
			EventCount:  len(b.Events),
			PeakRMS:     peak,
			AvgRMS:      round3(b.AvgRMS()),
			Axes:        axes,
			Tags:        tags,
		})
		res.RMSAnalysis.BurstsPerHour[b.StartTS.Format(hourKeyLayout)]++
	}

	res.RMSAnalysis.WorstHourByEvents = worstHour(res.RMSAnalysis.EventsPerHour)
	res.RMSAnalysis.WorstHourByBursts = worstHour(res.RMSAnalysis.BurstsPerHour)

	if len(bursts) > 0 {
		res.RMSAnalysis.Correlation.NearDitherPct = round1(100 * float64(nearDither) / float64(len(bursts)))
		res.RMSAnalysis.Correlation.NearAutofocusPct = round1(100 * float64(nearAutofocus) / float64(len(bursts)))
	}

	for _, sc := range settings {
		res.RMSAnalysis.SettingsChanges = append(res.RMSAnalysis.SettingsChanges, SettingsChangeReport{
			TS:          formatTS(sc.Timestamp),
			SettingType: string(sc.Kind),
			Value:       sc.Value,
			Note:        sc.Note,
		})
	}

	return res
}

// worstHour returns the hour with the highest count; ties resolve to the
// earliest hour for determinism.
func worstHour(perHour map[string]int) string {
	keys := make([]string, 0, len(perHour))
	for k := range perHour {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var worst string
	best := 0
	for _, k := range keys {
		if perHour[k] > best {
			best = perHour[k]
			worst = k
		}
	}
	return worst
}
