// Package main provides the nightlog CLI entry point.
//
// nightlog reconstructs an observation session timeline from NINA debug
// logs: what the rig spent the night doing, where time went, and how the
// guiding behaved.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/astrokit/nightlog/internal/config"
	"github.com/astrokit/nightlog/internal/logging"
	"github.com/astrokit/nightlog/internal/metrics"
	"github.com/astrokit/nightlog/internal/preflight"
	"github.com/astrokit/nightlog/internal/runner"
	"github.com/astrokit/nightlog/internal/session"
	"github.com/astrokit/nightlog/internal/stats"
	"github.com/astrokit/nightlog/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/nightlog
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("nightlog %s\n", version)
			return 0
		}
	}

	// Parse command-line flags
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// Initialize logger
	// When TUI is enabled, suppress logs to avoid interfering with TUI rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewStderrLogger(os.Stderr, cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger.Info("starting",
		"version", version,
		"files", len(cfg.LogPaths),
		"workers", cfg.Workers,
		"format", cfg.Format,
	)

	// Validate the input files before spending time on analysis
	if !cfg.SkipPreflight {
		result := preflight.RunAll(cfg.LogPaths)
		if !result.Passed {
			preflight.PrintResults(result)
			fmt.Fprintln(os.Stderr, "preflight checks failed (use -skip-preflight to override)")
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics are optional; only wire them when an endpoint or export
	// path is configured.
	var collector *metrics.Collector
	if cfg.MetricsAddr != "" || cfg.MetricsOut != "" {
		collector = metrics.NewCollector(version)
	}
	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, collector.Registry(), logger)
		if err := server.Start(); err != nil {
			logger.Error("metrics_server_failed", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	analyzer := session.New(session.Options{
		DownloadGapCapSeconds:    cfg.DownloadGapCap,
		JoinWindowSeconds:        cfg.JoinWindow,
		BurstGapSeconds:          cfg.BurstGap,
		CorrelationWindowSeconds: cfg.CorrelationWindow,
	}, logger)

	results := runner.New(analyzer, cfg.Workers, logger, collector).Run(ctx, cfg.LogPaths)

	if cfg.MetricsOut != "" {
		if err := collector.WriteTextfile(cfg.MetricsOut); err != nil {
			logger.Error("metrics_export_failed", "path", cfg.MetricsOut, "error", err)
		}
	}

	if cfg.TUIEnabled {
		program := tea.NewProgram(tui.New(results), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			return 1
		}
		return exitCode(results)
	}

	out := os.Stdout
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	switch cfg.Format {
	case "summary":
		writeSummary(out, results)
	default:
		if err := writeJSON(out, results); err != nil {
			logger.Error("output_failed", "error", err)
			return 1
		}
	}

	return exitCode(results)
}

// exitCode is nonzero when any file failed to analyze.
func exitCode(results []runner.FileResult) int {
	for _, r := range results {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}

// fileReport is the JSON wrapper for one analyzed file.
type fileReport struct {
	Path   string          `json:"path"`
	Error  string          `json:"error,omitempty"`
	Report *session.Result `json:"report,omitempty"`
}

// writeJSON emits one report per file. A single file unwraps to the bare
// report for easy piping into jq.
func writeJSON(w io.Writer, results []runner.FileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(results) == 1 && results[0].Err == nil {
		return enc.Encode(results[0].Result)
	}

	reports := make([]fileReport, 0, len(results))
	for _, r := range results {
		fr := fileReport{Path: r.Path, Report: r.Result}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		}
		reports = append(reports, fr)
	}
	return enc.Encode(reports)
}

// writeSummary prints a compact human-readable rundown per file.
func writeSummary(w io.Writer, results []runner.FileResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\n", r.Path)
		if r.Err != nil {
			fmt.Fprintf(w, "  error: %v\n\n", r.Err)
			continue
		}
		res := r.Result
		fmt.Fprintf(w, "  lines: %d total, %d matched, %d skipped\n",
			res.LinesTotal, res.LinesMatched, res.LinesSkippedTS)
		fmt.Fprintf(w, "  productive: %.1fs  idle: %.1fs\n",
			res.ProductiveSeconds, res.IdleSeconds)
		for _, label := range []string{"capture", "download", "focus", "slew_solve_center", "idle", "meridian_flip"} {
			if secs, ok := res.TotalsSeconds[label]; ok {
				fmt.Fprintf(w, "    %-18s %10.1fs\n", label, secs)
			}
		}
		rms := res.RMSAnalysis
		fmt.Fprintf(w, "  guiding: %d RMS events in %d bursts (max peak %.2f)\n",
			rms.TotalEventCount, rms.TotalBurstCount, rms.MaxPeakRMS)
		if rms.WorstHourByEvents != "" {
			fmt.Fprintf(w, "  worst hour: %s\n", rms.WorstHourByEvents)
		}
		fmt.Fprintln(w)
	}

	if len(results) > 1 {
		writeBatchSummary(w, results)
	}
}

// writeBatchSummary prints combined totals when more than one log was
// analyzed.
func writeBatchSummary(w io.Writer, results []runner.FileResult) {
	files := make([]stats.FileStats, 0, len(results))
	for _, r := range results {
		files = append(files, stats.FromResult(r.Path, r.Result))
	}
	b := stats.Aggregate(files)

	fmt.Fprintf(w, "batch: %d files", b.TotalFiles)
	if b.FailedFiles > 0 {
		fmt.Fprintf(w, " (%d failed)", b.FailedFiles)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  productive: %.1fs  idle: %.1fs  efficiency: %.1f%%\n",
		b.ProductiveSeconds, b.IdleSeconds, b.EfficiencyPct)
	fmt.Fprintf(w, "  guiding: %d RMS events in %d bursts (max peak %.2f)\n",
		b.TotalRMSEvents, b.TotalRMSBursts, b.MaxPeakRMS)
	if b.BestFile != "" && b.BestFile != b.WorstFile {
		fmt.Fprintf(w, "  best night: %s  worst night: %s\n", b.BestFile, b.WorstFile)
	}
}
