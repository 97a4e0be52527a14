package session

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// logLine builds a well-formed NINA log line for tests.
func logLine(ts, msg string) string {
	return fmt.Sprintf("%s|INFO|1|Sequencer|42|%s", ts, msg)
}

func buildLog(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func runTimeline(t *testing.T, text string) *timeline {
	t.Helper()
	events, _ := buildEvents(text)
	tl := newTimeline(20.0)
	tl.run(events)
	return tl
}

func findSegments(segs []Segment, label Label) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.Label == label {
			out = append(out, s)
		}
	}
	return out
}

func TestTimeline_FocusSegment(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:00", "Starting Category: Focuser, Item: RunAutofocus"),
		logLine("2025-08-12T21:00:45", "AutoFocus completed"),
	)

	tl := runTimeline(t, text)

	focus := findSegments(tl.segments, LabelFocus)
	if len(focus) != 1 {
		t.Fatalf("focus segments = %d, want 1", len(focus))
	}
	if got := focus[0].Duration(); got != 45.0 {
		t.Errorf("duration = %v, want 45.0", got)
	}
}

func TestTimeline_FocusEndWithoutStartIgnored(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:45", "AutoFocus completed"),
		logLine("2025-08-12T21:00:50", "some other line"),
	)

	tl := runTimeline(t, text)
	if n := len(tl.segments); n != 0 {
		t.Errorf("segments = %d, want 0", n)
	}
}

func TestTimeline_SlewSolveCenter(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:10:00", "Starting Category: Telescope, Item: Center"),
		logLine("2025-08-12T21:11:30", "Finishing Category: Telescope, Item: Center"),
	)

	tl := runTimeline(t, text)

	slew := findSegments(tl.segments, LabelSlew)
	if len(slew) != 1 {
		t.Fatalf("slew segments = %d, want 1", len(slew))
	}
	if got := slew[0].Duration(); got != 90.0 {
		t.Errorf("duration = %v, want 90.0", got)
	}
}

func TestTimeline_WaitSegments(t *testing.T) {
	tests := []struct {
		name       string
		startMsg   string
		endMsg     string
		wantReason string
	}{
		{
			name:       "wait_for_time",
			startMsg:   "Starting Category: Utility, Item: WaitForTime",
			endMsg:     "Finishing Category: Utility, Item: WaitForTime",
			wantReason: "WaitForTime",
		},
		{
			name:       "wait_for_altitude",
			startMsg:   "Starting Category: Utility, Item: WaitForAltitude",
			endMsg:     "Finishing Category: Utility, Item: WaitForAltitude",
			wantReason: "WaitForAltitude",
		},
		{
			name:       "wait_until_safe",
			startMsg:   "Starting Category: Safety Monitor, Item: WaitUntilSafe",
			endMsg:     "Finishing Category: Safety Monitor, Item: WaitUntilSafe",
			wantReason: "WaitUntilSafe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := buildLog(
				logLine("2025-08-12T22:00:00", tt.startMsg),
				logLine("2025-08-12T22:05:00", tt.endMsg),
			)

			tl := runTimeline(t, text)

			idle := findSegments(tl.segments, LabelIdle)
			if len(idle) != 1 {
				t.Fatalf("idle segments = %d, want 1", len(idle))
			}
			if got := idle[0].Duration(); got != 300.0 {
				t.Errorf("duration = %v, want 300.0", got)
			}
			meta, ok := idle[0].Meta.(WaitMeta)
			if !ok {
				t.Fatalf("meta type = %T, want WaitMeta", idle[0].Meta)
			}
			if meta.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", meta.Reason, tt.wantReason)
			}
		})
	}
}

func TestTimeline_RoofSlotIndependentOfWait(t *testing.T) {
	// Roof closes while a WaitUntilSafe is in progress; both intervals
	// must resolve with their own start times.
	text := buildLog(
		logLine("2025-08-12T23:00:00", "Starting Category: Safety Monitor, Item: WaitUntilSafe"),
		logLine("2025-08-12T23:01:00", "Roof closing"),
		logLine("2025-08-12T23:20:00", "Roof opening"),
		logLine("2025-08-12T23:21:00", "Finishing Category: Safety Monitor, Item: WaitUntilSafe"),
	)

	tl := runTimeline(t, text)

	idle := findSegments(tl.segments, LabelIdle)
	if len(idle) != 2 {
		t.Fatalf("idle segments = %d, want 2", len(idle))
	}

	var roofSeen, waitSeen bool
	for _, s := range idle {
		switch m := s.Meta.(type) {
		case RoofMeta:
			roofSeen = true
			if got := s.Duration(); got != 19*60.0 {
				t.Errorf("roof duration = %v, want 1140", got)
			}
			_ = m
		case WaitMeta:
			waitSeen = true
			if got := s.Duration(); got != 21*60.0 {
				t.Errorf("wait duration = %v, want 1260", got)
			}
		}
	}
	if !roofSeen || !waitSeen {
		t.Errorf("roofSeen=%v waitSeen=%v, want both", roofSeen, waitSeen)
	}
}

func TestTimeline_CaptureAndDownload(t *testing.T) {
	tests := []struct {
		name          string
		nextOffset    time.Duration // from exposure end
		wantDownload  bool
		wantDownloadS float64
	}{
		{name: "gap_within_cap", nextOffset: 5 * time.Second, wantDownload: true, wantDownloadS: 5.0},
		{name: "gap_at_cap", nextOffset: 20 * time.Second, wantDownload: true, wantDownloadS: 20.0},
		{name: "gap_beyond_cap", nextOffset: 21 * time.Second, wantDownload: false},
		{name: "zero_gap", nextOffset: 0, wantDownload: false},
		{name: "negative_gap", nextOffset: -2 * time.Second, wantDownload: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2025, 8, 12, 21, 0, 0, 0, time.UTC)
			next := start.Add(300*time.Second + tt.nextOffset)
			text := buildLog(
				logLine(formatTS(start), "Starting Exposure - Exposure Time: 300s"),
				logLine(formatTS(next), "unrelated sequencer chatter"),
			)

			tl := runTimeline(t, text)

			capture := findSegments(tl.segments, LabelCapture)
			if len(capture) != 1 {
				t.Fatalf("capture segments = %d, want 1", len(capture))
			}
			if got := capture[0].Duration(); got != 300.0 {
				t.Errorf("capture duration = %v, want 300.0", got)
			}

			download := findSegments(tl.segments, LabelDownload)
			if tt.wantDownload {
				if len(download) != 1 {
					t.Fatalf("download segments = %d, want 1", len(download))
				}
				if got := download[0].Duration(); got != tt.wantDownloadS {
					t.Errorf("download duration = %v, want %v", got, tt.wantDownloadS)
				}
			} else if len(download) != 0 {
				t.Errorf("download segments = %d, want 0", len(download))
			}
		})
	}
}

func TestTimeline_CaptureAsFinalEvent(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:00", "Starting Exposure - Exposure Time: 120s"),
	)

	tl := runTimeline(t, text)

	if n := len(findSegments(tl.segments, LabelCapture)); n != 1 {
		t.Fatalf("capture segments = %d, want 1", n)
	}
	if n := len(findSegments(tl.segments, LabelDownload)); n != 0 {
		t.Errorf("download segments = %d, want 0 with no next event", n)
	}
}

func TestTimeline_FractionalExposure(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:00", "Starting Exposure - Exposure Time: 0.5s"),
		logLine("2025-08-12T21:00:03", "unrelated"),
	)

	tl := runTimeline(t, text)

	capture := findSegments(tl.segments, LabelCapture)
	if len(capture) != 1 {
		t.Fatalf("capture segments = %d, want 1", len(capture))
	}
	if got := capture[0].Duration(); got != 0.5 {
		t.Errorf("capture duration = %v, want 0.5", got)
	}
	download := findSegments(tl.segments, LabelDownload)
	if len(download) != 1 {
		t.Fatalf("download segments = %d, want 1", len(download))
	}
	if got := download[0].Duration(); got != 2.5 {
		t.Errorf("download duration = %v, want 2.5", got)
	}
}

func TestTimeline_ForceCloseAtEndOfLog(t *testing.T) {
	// Focus never completes: the segment closes at the final event's
	// timestamp, not at "now".
	text := buildLog(
		logLine("2025-08-12T21:00:00", "Starting Category: Focuser, Item: RunAutofocus"),
		logLine("2025-08-12T21:02:00", "unrelated"),
	)

	tl := runTimeline(t, text)

	focus := findSegments(tl.segments, LabelFocus)
	if len(focus) != 1 {
		t.Fatalf("focus segments = %d, want 1", len(focus))
	}
	want := time.Date(2025, 8, 12, 21, 2, 0, 0, time.UTC)
	if !focus[0].End.Equal(want) {
		t.Errorf("end = %v, want %v (last event timestamp)", focus[0].End, want)
	}
}

func TestTimeline_CorrelationEvents(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:00", "Starting Category: Focuser, Item: RunAutofocus"),
		logLine("2025-08-12T21:00:45", "AutoFocus completed"),
		logLine("2025-08-12T21:01:00", "Starting Category: Telescope, Item: Center"),
		logLine("2025-08-12T21:02:00", "Finishing Category: Telescope, Item: Center"),
		logLine("2025-08-12T21:03:00", "Starting Category: Guider, Item: Dither"),
		logLine("2025-08-12T21:04:00", "Starting Category: Filter Wheel, Item: SwitchFilter"),
	)

	tl := runTimeline(t, text)

	want := []CorrelationKind{CorrAutofocus, CorrSlew, CorrDither, CorrFilterChange}
	if len(tl.corrEvents) != len(want) {
		t.Fatalf("correlation events = %d, want %d", len(tl.corrEvents), len(want))
	}
	for i, kind := range want {
		if tl.corrEvents[i].Kind != kind {
			t.Errorf("corrEvents[%d].Kind = %q, want %q", i, tl.corrEvents[i].Kind, kind)
		}
	}
}

func TestTimeline_UnclassifiedLinesIgnored(t *testing.T) {
	text := buildLog(
		logLine("2025-08-12T21:00:00", "some chatter about nothing"),
		logLine("2025-08-12T21:00:01", "There is still time remaining until the Meridian Flip"),
	)

	tl := runTimeline(t, text)

	if n := len(tl.segments); n != 0 {
		t.Errorf("segments = %d, want 0", n)
	}
	if tl.flip != flipClosed {
		t.Errorf("flip state = %v, a time-remaining notice must not open a flip", tl.flip)
	}
}
