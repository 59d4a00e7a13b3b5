package report

import (
	"context"
	"sort"
)

// Consolidate merges one group's intervals into the minimal set of
// disjoint spans covering the same wall-clock time. Intervals that
// merely touch end-to-start merge as well: there is no gap between
// them. An empty input yields an empty output.
func Consolidate(intervals []Interval) []MergedInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	merged := make([]MergedInterval, 0, len(sorted))
	running := MergedInterval{Start: sorted[0].Start, End: sorted[0].End, CoveredEvents: 1}
	for _, next := range sorted[1:] {
		if !next.Start.After(running.End) {
			if next.End.After(running.End) {
				running.End = next.End
			}
			running.CoveredEvents++
			continue
		}
		merged = append(merged, running)
		running = MergedInterval{Start: next.Start, End: next.End, CoveredEvents: 1}
	}
	return append(merged, running)
}

// ConsolidateGroups consolidates every group of a partition. Groups are
// independent; intervals from different keys are never merged with each
// other. The context is checked between group boundaries so a
// multi-group run can be aborted without handing back partial results.
func ConsolidateGroups(ctx context.Context, intervalsByKey map[string][]Interval) (map[string][]MergedInterval, error) {
	merged := make(map[string][]MergedInterval, len(intervalsByKey))
	for key, intervals := range intervalsByKey {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(intervals) == 0 {
			continue
		}
		merged[key] = Consolidate(intervals)
	}
	return merged, nil
}
