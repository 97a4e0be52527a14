package session

import (
	"strconv"
	"time"
)

// CorrelationKind identifies a session event that can be correlated with
// an RMS burst.
type CorrelationKind string

const (
	CorrDither       CorrelationKind = "dither"
	CorrAutofocus    CorrelationKind = "autofocus"
	CorrSlew         CorrelationKind = "slew"
	CorrFilterChange CorrelationKind = "filter_change"
	CorrFlip         CorrelationKind = "flip"
)

// CorrelationEvent marks when a correlatable session event happened.
type CorrelationEvent struct {
	Timestamp time.Time
	Kind      CorrelationKind
}

// flipState is the meridian-flip slot's explicit state. A physical slew
// marker can advance the recorded start of an already-open flip; modeling
// the slot as a small state machine keeps that decision testable.
type flipState int

const (
	flipClosed flipState = iota
	flipOpeningGeneric
	flipOpeningPhysical
)

// timeline runs the single forward pass over the event stream, maintaining
// one pending-start slot per category. The roof slot reuses the wait slot's
// mechanics but is tracked independently: a roof closure can overlap other
// waits in the source log.
type timeline struct {
	segments   []Segment
	corrEvents []CorrelationEvent
	rmsEvents  []RMSThresholdEvent
	settings   *settingsTracker

	downloadGapCap float64

	focusStart time.Time
	slewStart  time.Time
	waitStart  time.Time
	waitReason string
	roofStart  time.Time

	flip      flipState
	flipStart time.Time
}

func newTimeline(downloadGapCap float64) *timeline {
	return &timeline{
		downloadGapCap: downloadGapCap,
		settings:       newSettingsTracker(),
	}
}

// run consumes the ordered event stream. Any slot still open at
// end-of-stream is force-closed at the final event's timestamp; segments
// never extend past the observed data.
func (t *timeline) run(events []LogEvent) {
	for i, ev := range events {
		var next *LogEvent
		if i+1 < len(events) {
			next = &events[i+1]
		}
		t.step(ev, next)
	}

	if len(events) == 0 {
		return
	}
	last := events[len(events)-1].Timestamp
	if !t.focusStart.IsZero() {
		t.segments = accumulate(t.segments, t.focusStart, last, LabelFocus, nil)
	}
	if !t.slewStart.IsZero() {
		t.segments = accumulate(t.segments, t.slewStart, last, LabelSlew, nil)
	}
	if !t.waitStart.IsZero() {
		t.segments = accumulate(t.segments, t.waitStart, last, LabelIdle, WaitMeta{Reason: t.waitReason})
	}
	if !t.roofStart.IsZero() {
		t.segments = accumulate(t.segments, t.roofStart, last, LabelIdle, RoofMeta{})
	}
	if t.flip != flipClosed {
		t.segments = accumulate(t.segments, t.flipStart, last, LabelMeridianFlip, nil)
	}
}

// step classifies one event. RMS and settings extraction always run first:
// a line can carry those payloads alongside a category marker.
func (t *timeline) step(ev LogEvent, next *LogEvent) {
	ts, msg := ev.Timestamp, ev.Message

	if m := reRMSThreshold.FindStringSubmatch(msg); m != nil {
		rms, errR := strconv.ParseFloat(m[2], 64)
		threshold, errT := strconv.ParseFloat(m[3], 64)
		if errR == nil && errT == nil {
			t.rmsEvents = append(t.rmsEvents, RMSThresholdEvent{
				Timestamp: ts,
				Axis:      axisFromString(m[1]),
				RMS:       rms,
				Threshold: threshold,
			})
		}
	}
	t.observeSettings(ts, msg)

	// Category start/end markers, fixed priority order.

	if reFocusStart.MatchString(msg) {
		t.focusStart = ts
		t.correlate(ts, CorrAutofocus)
		return
	}
	if reFocusDone.MatchString(msg) && !t.focusStart.IsZero() {
		t.segments = accumulate(t.segments, t.focusStart, ts, LabelFocus, nil)
		t.focusStart = time.Time{}
		return
	}

	if reCenterStart.MatchString(msg) {
		t.slewStart = ts
		t.correlate(ts, CorrSlew)
		return
	}
	if reCenterFinish.MatchString(msg) {
		if !t.slewStart.IsZero() {
			t.segments = accumulate(t.segments, t.slewStart, ts, LabelSlew, nil)
			t.slewStart = time.Time{}
		}
		return
	}

	if reWaitTimeBegin.MatchString(msg) {
		t.waitStart, t.waitReason = ts, "WaitForTime"
		return
	}
	if reWaitAltBegin.MatchString(msg) {
		t.waitStart, t.waitReason = ts, "WaitForAltitude"
		return
	}
	if reWaitSafeBegin.MatchString(msg) {
		t.waitStart, t.waitReason = ts, "WaitUntilSafe"
		return
	}
	if reWaitGenericEnd.MatchString(msg) && !t.waitStart.IsZero() {
		t.segments = accumulate(t.segments, t.waitStart, ts, LabelIdle, WaitMeta{Reason: t.waitReason})
		t.waitStart = time.Time{}
		return
	}

	if reRoofClosing.MatchString(msg) {
		t.roofStart = ts
		return
	}
	if reRoofOpening.MatchString(msg) && !t.roofStart.IsZero() {
		t.segments = accumulate(t.segments, t.roofStart, ts, LabelIdle, RoofMeta{})
		t.roofStart = time.Time{}
		return
	}

	if m := reCaptureBegin.FindStringSubmatch(msg); m != nil {
		exp, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			t.capture(ts, exp, next)
		}
		return
	}

	if reDitherStart.MatchString(msg) {
		t.correlate(ts, CorrDither)
		return
	}
	if reFilterChange.MatchString(msg) {
		t.correlate(ts, CorrFilterChange)
		return
	}

	// Flip: a physical slew marker takes precedence over the generic
	// initialization marker and may advance an already-open start.
	if reFlipPhysicalStart.MatchString(msg) {
		switch t.flip {
		case flipClosed:
			t.flipStart = ts
			t.correlate(ts, CorrFlip)
		default:
			if ts.After(t.flipStart) {
				t.flipStart = ts
			}
		}
		t.flip = flipOpeningPhysical
		return
	}
	if reFlipStart.MatchString(msg) {
		if t.flip == flipClosed {
			t.flip = flipOpeningGeneric
			t.flipStart = ts
			t.correlate(ts, CorrFlip)
		}
		return
	}
	if reFlipDoneAlt.MatchString(msg) && t.flip != flipClosed {
		t.segments = accumulate(t.segments, t.flipStart, ts, LabelMeridianFlip, nil)
		t.flip = flipClosed
		return
	}
	if reFlipDone.MatchString(msg) && t.flip != flipClosed {
		t.segments = accumulate(t.segments, t.flipStart, ts, LabelMeridianFlip, nil)
		t.flip = flipClosed
		return
	}
}

// capture emits the capture segment immediately from the exposure duration,
// then inspects the next event to estimate download time. Gaps outside
// (0, downloadGapCap] are neither download time nor counted at all.
func (t *timeline) capture(ts time.Time, exposureSeconds float64, next *LogEvent) {
	expEnd := ts.Add(time.Duration(exposureSeconds * float64(time.Second)))
	t.segments = accumulate(t.segments, ts, expEnd, LabelCapture, CaptureMeta{ExposureSeconds: exposureSeconds})

	if next == nil {
		return
	}
	gap := next.Timestamp.Sub(expEnd).Seconds()
	if gap > 0 && gap <= t.downloadGapCap {
		t.segments = accumulate(t.segments, expEnd, next.Timestamp, LabelDownload, DownloadMeta{GapSeconds: gap})
	}
}

func (t *timeline) correlate(ts time.Time, kind CorrelationKind) {
	t.corrEvents = append(t.corrEvents, CorrelationEvent{Timestamp: ts, Kind: kind})
}

// observeSettings feeds any monitored setting value on this line to the
// settings tracker.
func (t *timeline) observeSettings(ts time.Time, msg string) {
	if m := reSettlePixels.FindStringSubmatch(msg); m != nil {
		t.settings.observe(ts, SettingSettlePixels, m[1])
	}
	if m := reSettleTime.FindStringSubmatch(msg); m != nil {
		t.settings.observe(ts, SettingSettleTime, m[1])
	}
	if m := reRMSThresholdConfig.FindStringSubmatch(msg); m != nil {
		t.settings.observe(ts, SettingRMSThresholdConfig, m[1])
	}
	if m := reDitherPixels.FindStringSubmatch(msg); m != nil {
		t.settings.observe(ts, SettingDitherPixels, m[1])
	}
	if m := reRMSPoints.FindStringSubmatch(msg); m != nil {
		t.settings.observe(ts, SettingRMSPoints, m[1])
	}
}
