package report

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultGroupDelimiter, 2)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestTopGroupsOpenEventUsesReferenceNow(t *testing.T) {
	engine := newTestEngine(t)
	referenceNow := at(10, 30)
	events := []AlarmEvent{
		{ID: "a1", GroupLabel: "TR-001 - No communication", Start: at(10, 0)},
	}
	result, err := engine.TopGroups(context.Background(), events, referenceNow, 10)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	if result.Groups[0].TotalDurationMinutes != 30.00 {
		t.Fatalf("expected 30.00 minutes, got %v", result.Groups[0].TotalDurationMinutes)
	}
}

func TestTopGroupsSharedReferenceNow(t *testing.T) {
	// All open events in one invocation resolve against the same
	// reference time.
	engine := newTestEngine(t)
	referenceNow := at(12, 0)
	events := []AlarmEvent{
		{ID: "a1", GroupLabel: "TR-001 - Fault", Start: at(10, 0)},
		{ID: "a2", GroupLabel: "TR-002 - Fault", Start: at(11, 0)},
	}
	result, err := engine.TopGroups(context.Background(), events, referenceNow, 10)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	byKey := make(map[string]float64)
	for _, row := range result.Groups {
		byKey[row.GroupKey] = row.TotalDurationMinutes
	}
	if byKey["TR-001"] != 120.00 || byKey["TR-002"] != 60.00 {
		t.Fatalf("unexpected durations: %+v", byKey)
	}
}

func TestTopGroupsRejectsMalformedWithoutCorruptingGroup(t *testing.T) {
	engine := newTestEngine(t)
	events := []AlarmEvent{
		{ID: "good", GroupLabel: "TR-001 - Fault", Start: at(12, 0), End: at(13, 0)},
		{ID: "bad", GroupLabel: "TR-001 - Fault", Start: at(14, 0), End: at(13, 0)},
		{ID: "future-open", GroupLabel: "TR-001 - Fault", Start: at(20, 0)},
	}
	result, err := engine.TopGroups(context.Background(), events, at(15, 0), 10)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	if len(result.Rejected) != 2 {
		t.Fatalf("expected 2 rejected events, got %d", len(result.Rejected))
	}
	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	if result.Groups[0].TotalDurationMinutes != 60.00 || result.Groups[0].TotalEventCount != 1 {
		t.Fatalf("valid interval corrupted: %+v", result.Groups[0])
	}
}

func TestTopGroupsRankingTie(t *testing.T) {
	engine := newTestEngine(t)
	events := []AlarmEvent{
		{ID: "a1", GroupLabel: "TR-009 - Fault", Start: at(8, 0), End: at(13, 0)},
		{ID: "a2", GroupLabel: "TR-002 - Fault", Start: at(9, 0), End: at(14, 0)},
	}
	result, err := engine.TopGroups(context.Background(), events, at(15, 0), 10)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	if result.Groups[0].GroupKey != "TR-002" || result.Groups[1].GroupKey != "TR-009" {
		t.Fatalf("tie must order by key ascending: %+v", result.Groups)
	}
}

func TestTopGroupsInvalidLimit(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.TopGroups(context.Background(), nil, at(12, 0), 0)
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTopGroupsEmptyInput(t *testing.T) {
	engine := newTestEngine(t)
	result, err := engine.TopGroups(context.Background(), nil, at(12, 0), 5)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	if len(result.Groups) != 0 || len(result.Rejected) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTopGroupsByteIdenticalAcrossInputOrder(t *testing.T) {
	engine := newTestEngine(t)
	base := []AlarmEvent{
		{ID: "a1", GroupLabel: "TR-001 - A", Start: at(8, 0), End: at(10, 0)},
		{ID: "a2", GroupLabel: "TR-001 - B", Start: at(9, 0), End: at(11, 0)},
		{ID: "a3", GroupLabel: "TR-002 - A", Start: at(8, 30), End: at(9, 30)},
		{ID: "a4", GroupLabel: "TR-003 - A", Start: at(7, 0), End: at(9, 0)},
		{ID: "a5", GroupLabel: "TR-002 - B", Start: at(9, 0)},
	}
	referenceNow := at(12, 0)

	canonical, err := engine.TopGroups(context.Background(), base, referenceNow, 10)
	if err != nil {
		t.Fatalf("top groups: %v", err)
	}
	wantJSON, err := json.Marshal(canonical.Groups)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 5; round++ {
		shuffled := make([]AlarmEvent, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		result, err := engine.TopGroups(context.Background(), shuffled, referenceNow, 10)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		gotJSON, err := json.Marshal(result.Groups)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(gotJSON) != string(wantJSON) {
			t.Fatalf("round %d: output differs:\n%s\n%s", round, gotJSON, wantJSON)
		}
	}
}

func TestTopGroupsCancelled(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := []AlarmEvent{{ID: "a1", GroupLabel: "TR-001 - A", Start: at(8, 0), End: at(9, 0)}}
	if _, err := engine.TopGroups(ctx, events, at(12, 0), 5); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestResolveIntervalClosedOpenRules(t *testing.T) {
	now := at(10, 30)
	if _, ok := ResolveInterval(AlarmEvent{ID: "x", Start: at(11, 0)}, now); ok {
		t.Fatalf("open event starting after reference time must be rejected")
	}
	interval, ok := ResolveInterval(AlarmEvent{ID: "x", Start: at(10, 0), End: at(10, 0)}, now)
	if !ok {
		t.Fatalf("zero-length interval is valid")
	}
	if interval.Minutes() != 0 {
		t.Fatalf("zero-length interval must measure 0, got %v", interval.Minutes())
	}
	if _, ok := ResolveInterval(AlarmEvent{ID: "x"}, now); ok {
		t.Fatalf("missing start must be rejected")
	}
}
