package report

import (
	"math"
	"sort"
)

// DefaultRoundPrecision is the number of decimal places durations are
// rounded to in report rows.
const DefaultRoundPrecision = 2

// Aggregate sums merged durations and original event counts per group,
// ranks groups by total duration descending (ties broken by group key
// ascending) and truncates to limit. A limit <= 0 is a caller contract
// violation and fails the whole call.
func Aggregate(mergedByKey map[string][]MergedInterval, eventCounts map[string]int, limit, precision int) ([]GroupAggregate, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if precision < 0 {
		precision = DefaultRoundPrecision
	}

	rows := make([]GroupAggregate, 0, len(mergedByKey))
	for key, merged := range mergedByKey {
		if len(merged) == 0 {
			continue
		}
		var minutes float64
		for _, span := range merged {
			minutes += span.Minutes()
		}
		rows = append(rows, GroupAggregate{
			GroupKey:             key,
			TotalDurationMinutes: RoundMinutes(minutes, precision),
			TotalEventCount:      eventCounts[key],
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalDurationMinutes != rows[j].TotalDurationMinutes {
			return rows[i].TotalDurationMinutes > rows[j].TotalDurationMinutes
		}
		return rows[i].GroupKey < rows[j].GroupKey
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// RoundMinutes rounds half-up to the given number of decimal places.
func RoundMinutes(minutes float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(minutes*factor) / factor
}
