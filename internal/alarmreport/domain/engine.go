package report

import (
	"context"
	"time"
)

// Engine runs the full consolidation pipeline: extract group keys,
// merge overlapping intervals per group, rank groups by affected time.
// It is a pure transformation; nothing outlives a call and concurrent
// invocations share no state.
type Engine struct {
	extractor KeyExtractor
	precision int
}

// NewEngine constructs an engine with an explicit delimiter and
// rounding precision.
func NewEngine(delimiter string, precision int) (*Engine, error) {
	extractor, err := NewKeyExtractor(delimiter)
	if err != nil {
		return nil, err
	}
	if precision < 0 {
		precision = DefaultRoundPrecision
	}
	return &Engine{extractor: extractor, precision: precision}, nil
}

// Result is the ranked outcome of one engine invocation. Rejected
// carries the malformed events excluded from the aggregate: one bad
// row must not prevent reporting on everything else.
type Result struct {
	Groups   []GroupAggregate `json:"groups"`
	Rejected []RejectedEvent  `json:"rejected,omitempty"`
}

// TopGroups ranks groups by consolidated affected time. All open
// events share referenceNow as their effective end; the caller decides
// it once per invocation.
func (e *Engine) TopGroups(ctx context.Context, events []AlarmEvent, referenceNow time.Time, limit int) (*Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	part := PartitionEvents(events, e.extractor, referenceNow)
	merged, err := ConsolidateGroups(ctx, part.Intervals)
	if err != nil {
		return nil, err
	}
	groups, err := Aggregate(merged, part.EventCounts, limit, e.precision)
	if err != nil {
		return nil, err
	}
	return &Result{Groups: groups, Rejected: part.Rejected}, nil
}

// ExtractKey exposes the engine's key extraction for callers that
// pre-filter events by group prefix.
func (e *Engine) ExtractKey(label string) string {
	return e.extractor.ExtractKey(label)
}
