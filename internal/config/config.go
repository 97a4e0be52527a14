// Package config provides configuration management for nightlog.
package config

// Config holds all configuration options for an analysis run.
type Config struct {
	// Input
	LogPaths []string `json:"log_paths"`

	// Timeline tuning (seconds)
	DownloadGapCap    float64 `json:"download_gap_cap"`
	JoinWindow        float64 `json:"join_window"`
	BurstGap          float64 `json:"burst_gap"`
	CorrelationWindow float64 `json:"correlation_window"`

	// Execution
	Workers       int  `json:"workers"`
	SkipPreflight bool `json:"skip_preflight"`

	// Output
	Format     string `json:"format"` // json, summary
	OutPath    string `json:"out_path"`
	TUIEnabled bool   `json:"tui"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	MetricsOut  string `json:"metrics_out"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Timeline tuning
		DownloadGapCap:    20.0,
		JoinWindow:        2.0,
		BurstGap:          2.5,
		CorrelationWindow: 60.0,

		// Execution
		Workers: 4,

		// Output
		Format:     "json",
		TUIEnabled: false,

		// Observability
		MetricsAddr: "", // disabled unless set
		MetricsOut:  "",
		Verbose:     false,
		LogFormat:   "text",
	}
}
