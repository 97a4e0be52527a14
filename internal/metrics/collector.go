// Package metrics provides Prometheus metrics for nightlog.
//
// All metrics are aggregate per process run. Cardinality stays bounded:
// segment labels and RMS axes are small fixed sets.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/astrokit/nightlog/internal/session"
)

var (
	nightlogInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nightlog_info",
			Help: "Information about the nightlog process (value always 1)",
		},
		[]string{"version"},
	)

	logsAnalyzedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_logs_analyzed_total",
			Help: "Total log files analyzed successfully",
		},
	)

	analysisErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_analysis_errors_total",
			Help: "Total log files that failed to analyze",
		},
	)

	linesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_lines_total",
			Help: "Total log lines seen across all analyzed files",
		},
	)

	linesByOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlog_lines_by_outcome_total",
			Help: "Log lines by classification outcome",
		},
		[]string{"outcome"}, // "matched" | "skipped_ts"
	)

	segmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlog_segments_total",
			Help: "Timeline segments produced, by label",
		},
		[]string{"label"},
	)

	segmentSecondsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlog_segment_seconds_total",
			Help: "Seconds attributed to timeline segments, by label",
		},
		[]string{"label"},
	)

	productiveSecondsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_productive_seconds_total",
			Help: "Seconds spent in productive activity (capture, download, dither settle)",
		},
	)

	idleSecondsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_idle_seconds_total",
			Help: "Seconds spent in overhead activity (focus, slew, waits, flips)",
		},
	)

	rmsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nightlog_rms_events_total",
			Help: "Guiding RMS threshold violations, by axis",
		},
		[]string{"axis"},
	)

	rmsBurstsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nightlog_rms_bursts_total",
			Help: "Guiding RMS bursts detected",
		},
	)

	maxPeakRMS = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nightlog_max_peak_rms",
			Help: "Highest RMS value observed across all analyzed files",
		},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nightlog_analysis_duration_seconds",
			Help:    "Wall-clock time to analyze one log file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
	)
)

// Collector manages all Prometheus metrics for nightlog.
type Collector struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	logs       int
	errs       int
	maxPeak    float64
	productive float64
	idle       float64
}

// NewCollector creates a collector backed by its own registry.
func NewCollector(version string) *Collector {
	return NewCollectorWithRegistry(version, prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(version string, registry *prometheus.Registry) *Collector {
	c := &Collector{registry: registry}

	registry.MustRegister(
		nightlogInfo,
		logsAnalyzedTotal,
		analysisErrorsTotal,
		linesTotal,
		linesByOutcomeTotal,
		segmentsTotal,
		segmentSecondsTotal,
		productiveSecondsTotal,
		idleSecondsTotal,
		rmsEventsTotal,
		rmsBurstsTotal,
		maxPeakRMS,
		analysisDurationSeconds,
	)

	nightlogInfo.WithLabelValues(version).Set(1)

	return c
}

// Registry returns the underlying registry, for serving and exporting.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordResult updates all metrics from one analyzed log.
func (c *Collector) RecordResult(res *session.Result, elapsed time.Duration) {
	logsAnalyzedTotal.Inc()
	linesTotal.Add(float64(res.LinesTotal))
	linesByOutcomeTotal.WithLabelValues("matched").Add(float64(res.LinesMatched))
	linesByOutcomeTotal.WithLabelValues("skipped_ts").Add(float64(res.LinesSkippedTS))

	for _, seg := range res.Segments {
		segmentsTotal.WithLabelValues(seg.Label).Inc()
		segmentSecondsTotal.WithLabelValues(seg.Label).Add(seg.DurationSeconds)
	}
	productiveSecondsTotal.Add(res.ProductiveSeconds)
	idleSecondsTotal.Add(res.IdleSeconds)

	for _, ev := range res.RMSAnalysis.Events {
		rmsEventsTotal.WithLabelValues(ev.Axis).Inc()
	}
	rmsBurstsTotal.Add(float64(res.RMSAnalysis.TotalBurstCount))

	analysisDurationSeconds.Observe(elapsed.Seconds())

	c.mu.Lock()
	c.logs++
	c.productive += res.ProductiveSeconds
	c.idle += res.IdleSeconds
	if res.RMSAnalysis.MaxPeakRMS > c.maxPeak {
		c.maxPeak = res.RMSAnalysis.MaxPeakRMS
		maxPeakRMS.Set(c.maxPeak)
	}
	c.mu.Unlock()
}

// RecordError records a log file that could not be analyzed.
func (c *Collector) RecordError() {
	analysisErrorsTotal.Inc()

	c.mu.Lock()
	c.errs++
	c.mu.Unlock()
}

// Summary holds the data for the exit summary.
type Summary struct {
	LogsAnalyzed      int
	Errors            int
	ProductiveSeconds float64
	IdleSeconds       float64
	MaxPeakRMS        float64
}

// GenerateSummary creates a summary of the run.
func (c *Collector) GenerateSummary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Summary{
		LogsAnalyzed:      c.logs,
		Errors:            c.errs,
		ProductiveSeconds: c.productive,
		IdleSeconds:       c.idle,
		MaxPeakRMS:        c.maxPeak,
	}
}
