package session

import (
	"strings"
	"time"
)

// Axis identifies which guiding axis an RMS warning refers to.
type Axis string

const (
	AxisTotal Axis = "total"
	AxisRA    Axis = "ra"
	AxisDec   Axis = "dec"
)

func axisFromString(s string) Axis {
	switch strings.ToLower(s) {
	case "ra":
		return AxisRA
	case "dec":
		return AxisDec
	default:
		return AxisTotal
	}
}

// RMSThresholdEvent is one "RMS above threshold" warning line.
type RMSThresholdEvent struct {
	Timestamp time.Time
	Axis      Axis
	RMS       float64
	Threshold float64
}

// Burst is a run of temporally close RMS threshold violations treated as
// one anomaly episode. EndTS advances as events are appended during
// grouping; Tags are added afterwards by the correlator. Peak, average,
// and axis counts are derived from Events on demand, never cached.
type Burst struct {
	StartTS time.Time
	EndTS   time.Time
	Events  []RMSThresholdEvent
	Tags    map[string]bool
}

// Duration returns the burst length in seconds.
func (b *Burst) Duration() float64 {
	return b.EndTS.Sub(b.StartTS).Seconds()
}

// PeakRMS returns the largest RMS value among the burst's events.
func (b *Burst) PeakRMS() float64 {
	var peak float64
	for _, e := range b.Events {
		if e.RMS > peak {
			peak = e.RMS
		}
	}
	return peak
}

// AvgRMS returns the mean RMS value across the burst's events.
func (b *Burst) AvgRMS() float64 {
	if len(b.Events) == 0 {
		return 0
	}
	var sum float64
	for _, e := range b.Events {
		sum += e.RMS
	}
	return sum / float64(len(b.Events))
}

// AxisCounts returns how many events each axis contributed.
func (b *Burst) AxisCounts() map[Axis]int {
	counts := make(map[Axis]int)
	for _, e := range b.Events {
		counts[e.Axis]++
	}
	return counts
}

// detectBursts groups timestamp-ordered RMS events greedily: an event
// joins the current burst when its gap to the burst's end is at most
// burstGap seconds, otherwise it starts a new burst.
func detectBursts(events []RMSThresholdEvent, burstGap float64) []*Burst {
	var bursts []*Burst
	for _, ev := range events {
		if n := len(bursts); n > 0 {
			cur := bursts[n-1]
			if ev.Timestamp.Sub(cur.EndTS).Seconds() <= burstGap {
				cur.Events = append(cur.Events, ev)
				if ev.Timestamp.After(cur.EndTS) {
					cur.EndTS = ev.Timestamp
				}
				continue
			}
		}
		bursts = append(bursts, &Burst{
			StartTS: ev.Timestamp,
			EndTS:   ev.Timestamp,
			Events:  []RMSThresholdEvent{ev},
			Tags:    make(map[string]bool),
		})
	}
	return bursts
}

// correlateBursts tags each burst with the kinds of session events found
// within the window around the burst start. Pure annotation: membership
// and timing never change.
func correlateBursts(bursts []*Burst, corrEvents []CorrelationEvent, windowSeconds float64) {
	window := time.Duration(windowSeconds * float64(time.Second))
	for _, b := range bursts {
		lo := b.StartTS.Add(-window)
		hi := b.StartTS.Add(window)
		for _, ce := range corrEvents {
			if ce.Timestamp.Before(lo) || ce.Timestamp.After(hi) {
				continue
			}
			b.Tags["near_"+string(ce.Kind)] = true
		}
	}
}
