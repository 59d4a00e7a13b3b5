package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultMaxPeriods caps how many months one query may span.
const DefaultMaxPeriods = 3

// Period identifies one monthly alarm partition.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Valid reports whether the period is a plausible calendar month.
func (p Period) Valid() bool {
	return p.Year >= 2000 && p.Year <= 2100 && p.Month >= 1 && p.Month <= 12
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Minutes returns the period length in minutes.
func (p Period) Minutes() float64 {
	return p.Start().AddDate(0, 1, 0).Sub(p.Start()).Minutes()
}

// Label renders the period as "May 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", time.Month(p.Month).String(), p.Year)
}

func (p Period) ordinal() int {
	return p.Year*12 + p.Month - 1
}

// ValidatePeriods enforces the query rules: at least one period, at
// most maxPeriods, every period a real month.
func ValidatePeriods(periods []Period, maxPeriods int) error {
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}
	if len(periods) == 0 {
		return ErrNoPeriods
	}
	if len(periods) > maxPeriods {
		return ErrTooManyPeriods
	}
	for _, period := range periods {
		if !period.Valid() {
			return fmt.Errorf("report: invalid period %04d-%02d", period.Year, period.Month)
		}
	}
	return nil
}

// SortPeriods orders periods chronologically.
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].ordinal() < periods[j].ordinal()
	})
}

// TotalMinutes sums the wall-clock length of the selected periods.
func TotalMinutes(periods []Period) float64 {
	var total float64
	for _, period := range periods {
		total += period.Minutes()
	}
	return total
}

// PeriodsLabel builds a human label for the selection. Consecutive
// months within one year compact to "May to July 2025".
func PeriodsLabel(periods []Period) string {
	if len(periods) == 0 {
		return "no period selected"
	}
	sorted := make([]Period, len(periods))
	copy(sorted, periods)
	SortPeriods(sorted)

	if len(sorted) > 2 {
		consecutive := true
		for i := 1; i < len(sorted); i++ {
			if sorted[i].ordinal()-sorted[i-1].ordinal() != 1 {
				consecutive = false
				break
			}
		}
		first, last := sorted[0], sorted[len(sorted)-1]
		if consecutive && first.Year == last.Year {
			return fmt.Sprintf("%s to %s %d", time.Month(first.Month).String(), time.Month(last.Month).String(), first.Year)
		}
	}

	labels := make([]string, len(sorted))
	for i, period := range sorted {
		labels[i] = period.Label()
	}
	return strings.Join(labels, ", ")
}

// ParsePeriod parses "2025-05" into a Period.
func ParsePeriod(value string) (Period, error) {
	parsed, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return Period{}, fmt.Errorf("report: period must be YYYY-MM: %q", value)
	}
	return Period{Year: parsed.Year(), Month: int(parsed.Month())}, nil
}

// ParsePeriods parses a comma-separated list of "YYYY-MM" values.
func ParsePeriods(value string) ([]Period, error) {
	if strings.TrimSpace(value) == "" {
		return nil, ErrNoPeriods
	}
	parts := strings.Split(value, ",")
	periods := make([]Period, 0, len(parts))
	for _, part := range parts {
		period, err := ParsePeriod(part)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, nil
}
