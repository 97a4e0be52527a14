package session

import (
	"io"
	"log/slog"
	"sort"
)

// Options are the plain numeric tunables of the engine. They are not
// environment- or file-sourced here; the caller decides where they come
// from.
type Options struct {
	// DownloadGapCapSeconds caps the post-exposure gap attributable to
	// image download.
	DownloadGapCapSeconds float64
	// JoinWindowSeconds is the maximum gap merged between adjacent
	// same-label segments.
	JoinWindowSeconds float64
	// BurstGapSeconds is the maximum gap between RMS events grouped into
	// one burst.
	BurstGapSeconds float64
	// CorrelationWindowSeconds is the half-width of the window used to tag
	// bursts with nearby session events.
	CorrelationWindowSeconds float64
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		DownloadGapCapSeconds:    20.0,
		JoinWindowSeconds:        2.0,
		BurstGapSeconds:          2.5,
		CorrelationWindowSeconds: 60.0,
	}
}

// Analyzer reconstructs session timelines from log text.
//
// An Analyzer holds no per-log state: each Analyze call owns its own
// trackers, so one Analyzer is safe to use from multiple goroutines on
// different logs.
type Analyzer struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Analyzer. A nil logger disables logging.
func New(opts Options, logger *slog.Logger) *Analyzer {
	if opts.DownloadGapCapSeconds <= 0 {
		opts.DownloadGapCapSeconds = 20.0
	}
	if opts.JoinWindowSeconds < 0 {
		opts.JoinWindowSeconds = 2.0
	}
	if opts.BurstGapSeconds <= 0 {
		opts.BurstGapSeconds = 2.5
	}
	if opts.CorrelationWindowSeconds <= 0 {
		opts.CorrelationWindowSeconds = 60.0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Options returns the analyzer's effective options.
func (a *Analyzer) Options() Options { return a.opts }

// Analyze runs the full single-pass reconstruction over one log's text.
// Malformed content degrades to skipped or unclassified lines; Analyze
// never fails on bad input. Empty input yields a well-defined zero result.
func (a *Analyzer) Analyze(text string) *Result {
	events, diag := buildEvents(text)

	if len(events) == 0 {
		a.logger.Debug("no_usable_events", "lines_total", diag.linesTotal)
		return buildReport(diag, nil, nil, nil, nil, a.opts.CorrelationWindowSeconds)
	}

	tl := newTimeline(a.opts.DownloadGapCapSeconds)
	tl.run(events)

	segments := mergeAdjacent(tl.segments, a.opts.JoinWindowSeconds)

	bursts := detectBursts(tl.rmsEvents, a.opts.BurstGapSeconds)
	correlateBursts(bursts, tl.corrEvents, a.opts.CorrelationWindowSeconds)

	settings := append(tl.settings.changes, inferThresholdChanges(tl.rmsEvents)...)
	sort.SliceStable(settings, func(i, j int) bool {
		return settings[i].Timestamp.Before(settings[j].Timestamp)
	})

	a.logger.Debug("analyze_complete",
		"lines_total", diag.linesTotal,
		"lines_matched", diag.linesMatched,
		"lines_skipped_ts", diag.linesSkippedTS,
		"segments", len(segments),
		"rms_events", len(tl.rmsEvents),
		"bursts", len(bursts),
	)

	return buildReport(diag, segments, tl.rmsEvents, bursts, settings, a.opts.CorrelationWindowSeconds)
}
