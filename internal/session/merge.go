package session

import "sort"

// mergeAdjacent coalesces same-label segments separated by gaps at or below
// joinWindow seconds. Sub-2-second logging jitter between consecutive
// same-purpose lines would otherwise punch artificial idle holes in the
// timeline. The earliest segment's meta wins; absorbed meta is discarded.
// Idempotent: merging an already-merged list is a no-op.
func mergeAdjacent(segments []Segment, joinWindow float64) []Segment {
	if len(segments) == 0 {
		return nil
	}

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	merged := sorted[:1]
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		gap := seg.Start.Sub(last.End).Seconds()
		if last.Label == seg.Label && gap <= joinWindow {
			if seg.End.After(last.End) {
				last.End = seg.End
			}
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}
