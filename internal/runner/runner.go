// Package runner analyzes a batch of log files with a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/astrokit/nightlog/internal/metrics"
	"github.com/astrokit/nightlog/internal/session"
)

// FileResult is the analysis outcome for one log file.
type FileResult struct {
	Path    string
	Result  *session.Result
	Err     error
	Elapsed time.Duration
}

// Runner fans log files out to a fixed number of analysis workers.
type Runner struct {
	analyzer *session.Analyzer
	workers  int
	logger   *slog.Logger
	metrics  *metrics.Collector // optional
}

// New creates a Runner. A nil collector disables metrics recording.
func New(analyzer *session.Analyzer, workers int, logger *slog.Logger, collector *metrics.Collector) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		analyzer: analyzer,
		workers:  workers,
		logger:   logger,
		metrics:  collector,
	}
}

// Run analyzes every path and returns results in input order. A file
// that fails to read yields a FileResult with Err set; other files are
// unaffected. Run stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = r.analyzeOne(j.path)
			}
		}()
	}

	for i, p := range paths {
		select {
		case <-ctx.Done():
			// Mark the remaining files instead of dropping them.
			for k := i; k < len(paths); k++ {
				results[k] = FileResult{Path: paths[k], Err: ctx.Err()}
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- job{idx: i, path: p}:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (r *Runner) analyzeOne(path string) FileResult {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("log_read_failed", "path", path, "error", err)
		if r.metrics != nil {
			r.metrics.RecordError()
		}
		return FileResult{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	res := r.analyzer.Analyze(string(data))
	elapsed := time.Since(start)

	r.logger.Info("log_analyzed",
		"path", path,
		"lines", res.LinesTotal,
		"segments", len(res.Segments),
		"elapsed", elapsed,
	)
	if r.metrics != nil {
		r.metrics.RecordResult(res, elapsed)
	}

	return FileResult{Path: path, Result: res, Elapsed: elapsed}
}
