package report

import "time"

// AlarmEvent is one alarm occurrence as recorded in the alarm history.
// A zero End means the alarm had not cleared when the rows were read.
type AlarmEvent struct {
	ID         string    `json:"id"`
	GroupLabel string    `json:"group_label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end,omitempty"`
}

// Open reports whether the event had not cleared yet.
func (e AlarmEvent) Open() bool {
	return e.End.IsZero()
}

// Interval is a closed time span with both bounds resolved.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Minutes returns the interval length in minutes.
func (iv Interval) Minutes() float64 {
	return iv.End.Sub(iv.Start).Minutes()
}

// MergedInterval is a maximal disjoint span produced by the
// consolidator, covering one or more overlapping source intervals.
type MergedInterval struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	CoveredEvents int       `json:"covered_events"`
}

// Minutes returns the merged span length in minutes.
func (m MergedInterval) Minutes() float64 {
	return m.End.Sub(m.Start).Minutes()
}

// GroupAggregate is one ranked row of the consolidated report.
type GroupAggregate struct {
	GroupKey             string  `json:"group_key"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	TotalEventCount      int     `json:"total_event_count"`
}

// RejectedEvent records an event excluded from aggregation.
type RejectedEvent struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// ResolveInterval resolves an event to its effective interval against a
// shared reference time. Events whose effective end precedes their
// start are malformed; they are reported, never coerced.
func ResolveInterval(event AlarmEvent, referenceNow time.Time) (Interval, bool) {
	if event.Start.IsZero() {
		return Interval{}, false
	}
	end := event.End
	if end.IsZero() {
		end = referenceNow
	}
	if end.Before(event.Start) {
		return Interval{}, false
	}
	return Interval{Start: event.Start.UTC(), End: end.UTC()}, true
}

// Partition holds one invocation's per-group engine input.
type Partition struct {
	Intervals   map[string][]Interval
	EventCounts map[string]int
	Rejected    []RejectedEvent
}

// PartitionEvents resolves events against referenceNow and buckets the
// valid intervals by group key. Malformed events are collected in
// Rejected and excluded from their group without affecting the rest.
func PartitionEvents(events []AlarmEvent, extractor KeyExtractor, referenceNow time.Time) Partition {
	part := Partition{
		Intervals:   make(map[string][]Interval),
		EventCounts: make(map[string]int),
	}
	for _, event := range events {
		interval, ok := ResolveInterval(event, referenceNow)
		if !ok {
			reason := reasonEndBeforeStart
			if event.Start.IsZero() {
				reason = reasonMissingStart
			}
			part.Rejected = append(part.Rejected, RejectedEvent{EventID: event.ID, Reason: reason})
			continue
		}
		key := extractor.ExtractKey(event.GroupLabel)
		part.Intervals[key] = append(part.Intervals[key], interval)
		part.EventCounts[key]++
	}
	return part
}

const (
	reasonEndBeforeStart = "end before start"
	reasonMissingStart   = "missing start"
)
