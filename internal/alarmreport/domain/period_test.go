package report

import (
	"errors"
	"testing"
)

func TestValidatePeriods(t *testing.T) {
	if err := ValidatePeriods(nil, 3); !errors.Is(err, ErrNoPeriods) {
		t.Fatalf("expected ErrNoPeriods, got %v", err)
	}
	four := []Period{{2025, 1}, {2025, 2}, {2025, 3}, {2025, 4}}
	if err := ValidatePeriods(four, 3); !errors.Is(err, ErrTooManyPeriods) {
		t.Fatalf("expected ErrTooManyPeriods, got %v", err)
	}
	if err := ValidatePeriods([]Period{{2025, 13}}, 3); err == nil {
		t.Fatalf("expected error for month 13")
	}
	if err := ValidatePeriods([]Period{{2025, 5}, {2025, 6}}, 3); err != nil {
		t.Fatalf("valid selection rejected: %v", err)
	}
}

func TestParsePeriods(t *testing.T) {
	periods, err := ParsePeriods("2025-05, 2025-06")
	if err != nil {
		t.Fatalf("parse periods: %v", err)
	}
	if len(periods) != 2 || periods[0] != (Period{2025, 5}) || periods[1] != (Period{2025, 6}) {
		t.Fatalf("unexpected periods: %+v", periods)
	}
	if _, err := ParsePeriods("2025/05"); err == nil {
		t.Fatalf("expected error for bad format")
	}
	if _, err := ParsePeriods(""); !errors.Is(err, ErrNoPeriods) {
		t.Fatalf("expected ErrNoPeriods, got %v", err)
	}
}

func TestPeriodsLabel(t *testing.T) {
	cases := []struct {
		periods []Period
		want    string
	}{
		{[]Period{{2025, 6}}, "June 2025"},
		{[]Period{{2025, 5}, {2025, 7}, {2025, 6}}, "May to July 2025"},
		{[]Period{{2025, 5}, {2025, 7}, {2025, 9}}, "May 2025, July 2025, September 2025"},
		{nil, "no period selected"},
	}
	for _, tc := range cases {
		if got := PeriodsLabel(tc.periods); got != tc.want {
			t.Fatalf("PeriodsLabel(%+v) = %q, want %q", tc.periods, got, tc.want)
		}
	}
}

func TestPeriodMinutes(t *testing.T) {
	june := Period{2025, 6}
	if got := june.Minutes(); got != 30*24*60 {
		t.Fatalf("June 2025 minutes = %v, want %v", got, 30*24*60)
	}
	if got := TotalMinutes([]Period{{2025, 6}, {2025, 7}}); got != float64(30*24*60+31*24*60) {
		t.Fatalf("total minutes = %v", got)
	}
}
