// Package session reconstructs an imaging-session timeline from a NINA
// debug log. A single forward pass over the log text produces labeled
// activity segments (capture, download, focus, slew, waits, meridian flip),
// a guiding-RMS burst analysis correlated with nearby session events, and
// a record of observed settings changes.
package session

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// LogEvent is one usable log line: its parsed timestamp and message body.
type LogEvent struct {
	Timestamp time.Time
	Message   string
}

// TimestampParseError reports a log timestamp whose integer portion could
// not be parsed. It is recoverable: the caller skips the line and counts it.
type TimestampParseError struct {
	Raw string
	Err error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %v", e.Raw, e.Err)
}

func (e *TimestampParseError) Unwrap() error { return e.Err }

// reLine matches the NINA log line shape:
// TIMESTAMP|LEVEL|THREAD|COMPONENT|SEQ|MESSAGE
var reLine = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?)\|[A-Z]+\|[^|]*\|[^|]*\|\d+\|(.*)$`)

const (
	tsLayout     = "2006-01-02T15:04:05"
	tsLayoutFrac = "2006-01-02T15:04:05.000000"
)

// ParseTimestamp parses an ISO-8601 timestamp with a variable-width
// fractional second field. Fractions are normalized to exactly six digits
// (microseconds) by padding or truncating before parsing. Timestamps are
// naive local instants; no timezone handling.
func ParseTimestamp(s string) (time.Time, error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		t, err := time.Parse(tsLayout, s)
		if err != nil {
			return time.Time{}, &TimestampParseError{Raw: s, Err: err}
		}
		return t, nil
	}

	datePart := s[:dot]
	frac := s[dot+1:]
	// Drop anything from the first non-digit onward (stray suffixes).
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			frac = frac[:i]
			break
		}
	}
	if len(frac) > 6 {
		frac = frac[:6]
	} else {
		frac = frac + strings.Repeat("0", 6-len(frac))
	}

	t, err := time.Parse(tsLayoutFrac, datePart+"."+frac)
	if err != nil {
		return time.Time{}, &TimestampParseError{Raw: s, Err: err}
	}
	return t, nil
}

// parseDiag tracks event stream diagnostics across one parse.
type parseDiag struct {
	linesTotal     int
	linesMatched   int
	linesSkippedTS int
}

// buildEvents splits the raw log text into ordered (timestamp, message)
// events. Lines that do not match the expected shape are silently skipped;
// lines whose timestamp fails to parse are skipped and counted.
func buildEvents(text string) ([]LogEvent, parseDiag) {
	var diag parseDiag
	var events []LogEvent

	if text == "" {
		return nil, diag
	}
	lines := strings.Split(text, "\n")
	// A trailing newline is not an extra (empty) line.
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, ln := range lines {
		diag.linesTotal++
		ln = strings.TrimSuffix(ln, "\r")
		m := reLine.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		diag.linesMatched++
		ts, err := ParseTimestamp(m[1])
		if err != nil {
			diag.linesSkippedTS++
			continue
		}
		events = append(events, LogEvent{Timestamp: ts, Message: m[2]})
	}
	return events, diag
}
