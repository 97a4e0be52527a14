package session

import (
	"strconv"
	"time"
)

// Label identifies one activity category in the session timeline.
type Label string

const (
	LabelCapture      Label = "capture"
	LabelDownload     Label = "download"
	LabelFocus        Label = "focus"
	LabelSlew         Label = "slew_solve_center"
	LabelIdle         Label = "idle"
	LabelMeridianFlip Label = "meridian_flip"
)

// productiveLabels are the categories that advance the imaging plan.
// Everything else (waits, roof-closed time, meridian flips) is idle.
var productiveLabels = map[Label]bool{
	LabelCapture:  true,
	LabelDownload: true,
	LabelSlew:     true,
	LabelFocus:    true,
}

// SegmentMeta carries per-label detail for a segment. Concrete types keep
// the detail typed inside the engine; Fields renders it for the report.
type SegmentMeta interface {
	Fields() map[string]string
}

// WaitMeta records why a wait segment was idle.
type WaitMeta struct {
	Reason string
}

func (m WaitMeta) Fields() map[string]string {
	return map[string]string{"reason": m.Reason}
}

// CaptureMeta records the exposure duration of a capture segment.
type CaptureMeta struct {
	ExposureSeconds float64
}

func (m CaptureMeta) Fields() map[string]string {
	return map[string]string{"exp_s": strconv.FormatFloat(m.ExposureSeconds, 'g', -1, 64)}
}

// DownloadMeta records the observed gap attributed to image download.
type DownloadMeta struct {
	GapSeconds float64
}

func (m DownloadMeta) Fields() map[string]string {
	return map[string]string{"gap_s": strconv.FormatFloat(round3(m.GapSeconds), 'g', -1, 64)}
}

// RoofMeta marks roof-closed idle time.
type RoofMeta struct{}

func (RoofMeta) Fields() map[string]string {
	return map[string]string{"reason": "RoofClosed"}
}

// Segment is one labeled, closed time interval. Invariant: End > Start;
// zero or negative durations are discarded at creation and never stored.
type Segment struct {
	Start time.Time
	End   time.Time
	Label Label
	Meta  SegmentMeta
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	d := s.End.Sub(s.Start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// accumulate appends a segment, dropping empty or inverted intervals.
func accumulate(segs []Segment, start, end time.Time, label Label, meta SegmentMeta) []Segment {
	if !end.After(start) {
		return segs
	}
	return append(segs, Segment{Start: start, End: end, Label: label, Meta: meta})
}
