package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// At least one log file is required
	if len(cfg.LogPaths) == 0 {
		errs = append(errs, ValidationError{
			Field:   "log_paths",
			Message: "at least one log file is required",
		})
	}

	// Timeline tuning must be positive
	if cfg.DownloadGapCap <= 0 {
		errs = append(errs, ValidationError{
			Field:   "download_gap_cap",
			Message: "must be positive",
		})
	}
	if cfg.JoinWindow < 0 {
		errs = append(errs, ValidationError{
			Field:   "join_window",
			Message: "must not be negative",
		})
	}
	if cfg.BurstGap <= 0 {
		errs = append(errs, ValidationError{
			Field:   "burst_gap",
			Message: "must be positive",
		})
	}
	if cfg.CorrelationWindow <= 0 {
		errs = append(errs, ValidationError{
			Field:   "correlation_window",
			Message: "must be positive",
		})
	}

	// Workers must be positive
	if cfg.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "workers",
			Message: "must be at least 1",
		})
	}

	// Format must be valid
	validFormats := map[string]bool{"json": true, "summary": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("must be 'json' or 'summary' (got %q)", cfg.Format),
		})
	}

	// TUI and file output do not combine
	if cfg.TUIEnabled && cfg.OutPath != "" {
		errs = append(errs, ValidationError{
			Field:   "tui",
			Message: "-tui cannot be combined with -out",
		})
	}

	// Log format must be valid
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
