package session

import (
	"math"
	"strconv"
	"time"
)

// SettingKind enumerates the monitored configuration parameters.
//
// SettingRMSThreshold entries are inferred from the RMS warning lines
// themselves; SettingRMSThresholdConfig entries come from explicitly
// logged configuration values. The two are kept distinct on purpose:
// collapsing them could hide a discrepancy between the configured and
// the observed threshold.
type SettingKind string

const (
	SettingSettlePixels       SettingKind = "settle_pixels"
	SettingSettleTime         SettingKind = "settle_time"
	SettingRMSThreshold       SettingKind = "rms_threshold"
	SettingRMSThresholdConfig SettingKind = "rms_threshold_config"
	SettingDitherPixels       SettingKind = "dither_pixels"
	SettingRMSPoints          SettingKind = "rms_points"
)

// SettingsChange records one observed parameter value transition.
// Append-only; no two consecutive entries of the same kind carry an
// equal value.
type SettingsChange struct {
	Timestamp time.Time
	Kind      SettingKind
	Value     float64
	Note      string
}

// settingsTracker keeps the last seen value per kind across the forward
// pass and appends a change entry only when the value actually moves.
type settingsTracker struct {
	changes  []SettingsChange
	lastSeen map[SettingKind]float64
}

func newSettingsTracker() *settingsTracker {
	return &settingsTracker{lastSeen: make(map[SettingKind]float64)}
}

func (t *settingsTracker) observe(ts time.Time, kind SettingKind, raw string) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	prior, seen := t.lastSeen[kind]
	if seen && prior == value {
		return
	}
	note := "initial"
	if seen {
		note = "changed from " + formatValue(prior)
	}
	t.changes = append(t.changes, SettingsChange{Timestamp: ts, Kind: kind, Value: value, Note: note})
	t.lastSeen[kind] = value
}

// inferThresholdChanges derives rms_threshold entries from the RMS warning
// events directly: the first event's threshold is recorded as initial, and
// any later event whose threshold moved by more than 0.001 records a
// change. The configured threshold is sometimes only inferable this way.
func inferThresholdChanges(events []RMSThresholdEvent) []SettingsChange {
	var changes []SettingsChange
	var last float64
	seen := false
	for _, ev := range events {
		if !seen {
			changes = append(changes, SettingsChange{
				Timestamp: ev.Timestamp,
				Kind:      SettingRMSThreshold,
				Value:     ev.Threshold,
				Note:      "initial",
			})
			last = ev.Threshold
			seen = true
			continue
		}
		if math.Abs(ev.Threshold-last) > 0.001 {
			changes = append(changes, SettingsChange{
				Timestamp: ev.Timestamp,
				Kind:      SettingRMSThreshold,
				Value:     ev.Threshold,
				Note:      "changed from " + formatValue(last),
			})
			last = ev.Threshold
		}
	}
	return changes
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
