package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
// Positional arguments are the log files to analyze.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `nightlog - observation session timeline reconstruction from NINA debug logs

Usage:
  nightlog [flags] <LOG_FILE> [LOG_FILE...]

Timeline Tuning:
`)
		printFlagCategory([]string{"download-gap-cap", "join-window", "burst-gap", "correlation-window"})

		fmt.Fprintf(os.Stderr, "\nExecution:\n")
		printFlagCategory([]string{"workers", "skip-preflight"})

		fmt.Fprintf(os.Stderr, "\nOutput:\n")
		printFlagCategory([]string{"format", "out", "tui"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "metrics-out", "v", "log-format"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Analyze one night, JSON to stdout
  nightlog 20250812-214400-3.1.2.9001.log

  # Human-readable summary for a batch of logs
  nightlog -format summary logs/*.log

  # Interactive results browser
  nightlog -tui 20250812-214400-3.1.2.9001.log

`)
	}

	// Timeline tuning
	flag.Float64Var(&cfg.DownloadGapCap, "download-gap-cap", cfg.DownloadGapCap, "Max gap in seconds attributed to image download after an exposure")
	flag.Float64Var(&cfg.JoinWindow, "join-window", cfg.JoinWindow, "Merge same-label segments separated by at most this many seconds")
	flag.Float64Var(&cfg.BurstGap, "burst-gap", cfg.BurstGap, "Max gap in seconds between RMS events grouped into one burst")
	flag.Float64Var(&cfg.CorrelationWindow, "correlation-window", cfg.CorrelationWindow, "Seconds around a burst start searched for nearby activity")

	// Execution
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of log files analyzed concurrently")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip input file validation checks")

	// Output
	flag.StringVar(&cfg.Format, "format", cfg.Format, `Output format: "json" or "summary"`)
	flag.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Write output to this file instead of stdout")
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Open an interactive results browser after analysis")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	flag.StringVar(&cfg.MetricsOut, "metrics-out", cfg.MetricsOut, "Write metrics in Prometheus text format to this file (node_exporter textfile collector)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	// Parse
	flag.Parse()

	// Positional arguments: log files
	cfg.LogPaths = flag.Args()

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	// Infer type from default value format
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if strings.Contains(f.DefValue, ".") {
		return "float"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
