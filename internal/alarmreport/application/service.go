package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	report "solar-alarm-insights/internal/alarmreport/domain"
)

// AlarmRecordReader loads alarm rows from the partitioned history
// tables. The reader selects the time window; the service never talks
// to storage directly.
type AlarmRecordReader interface {
	FetchRecords(ctx context.Context, stationID int, periods []report.Period) ([]report.AlarmRecord, error)
	ListPage(ctx context.Context, stationID int, periods []report.Period, offset, limit int) ([]report.AlarmRecord, int, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Order selects the ranking criterion for equipment and tele-object
// rankings.
type Order string

const (
	OrderByDuration Order = "duration"
	OrderByCount    Order = "count"
)

// EquipmentAggregate is one ranking row grouped by equipment or
// tele-object name.
type EquipmentAggregate struct {
	Name         string  `json:"name"`
	SkidName     string  `json:"skid_name,omitempty"`
	DisplayName  string  `json:"display_name"`
	AlarmCount   int     `json:"alarm_count"`
	TotalMinutes float64 `json:"total_minutes"`
	MeanMinutes  float64 `json:"mean_minutes"`
}

// SeveritySlice is the per-severity share of alarmed time.
type SeveritySlice struct {
	SeverityID   int     `json:"severity_id"`
	Name         string  `json:"name"`
	Color        string  `json:"color,omitempty"`
	AlarmCount   int     `json:"alarm_count"`
	TotalMinutes float64 `json:"total_minutes"`
	Percent      float64 `json:"percent"`
}

// DailyPoint is one day of the evolution series.
type DailyPoint struct {
	Date         string  `json:"date"`
	AlarmCount   int     `json:"alarm_count"`
	TotalMinutes float64 `json:"total_minutes"`
}

// UserAggregate counts acknowledgements per user.
type UserAggregate struct {
	Name     string `json:"name"`
	AckCount int    `json:"ack_count"`
}

// AlarmPage is one page of the drill-down alarm table.
type AlarmPage struct {
	Items      []report.AlarmRecord `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalCount int                  `json:"total_count"`
}

// FullReport bundles everything the export formats render.
type FullReport struct {
	StationID           int                  `json:"station_id"`
	PeriodLabel         string               `json:"period_label"`
	GeneratedAt         time.Time            `json:"generated_at"`
	KPIs                KPISet               `json:"kpis"`
	EquipmentByDuration []EquipmentAggregate `json:"equipment_by_duration"`
	TeleObjects         []EquipmentAggregate `json:"tele_objects"`
	Severity            []SeveritySlice      `json:"severity"`
	Trackers            *report.Result       `json:"trackers"`
	Daily               []DailyPoint         `json:"daily"`
}

// ReportService computes the dashboard aggregates from raw alarm rows.
// Each call resolves the reference time once and passes it through, so
// every open alarm in one invocation shares the same effective "now".
type ReportService struct {
	records AlarmRecordReader
	engine  *report.Engine
	cfg     Config
	clock   Clock
}

// ServiceOption customizes the report service.
type ServiceOption func(*ReportService)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *ReportService) {
		s.clock = clock
	}
}

// NewReportService constructs a report service.
func NewReportService(records AlarmRecordReader, cfg Config, opts ...ServiceOption) (*ReportService, error) {
	if records == nil {
		return nil, errors.New("report service: nil record reader")
	}
	engine, err := report.NewEngine(cfg.GroupDelimiter, cfg.RoundPrecision)
	if err != nil {
		return nil, err
	}
	service := &ReportService{
		records: records,
		engine:  engine,
		cfg:     cfg,
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// TrackerConsolidation ranks trackers by deduplicated affected time.
// Overlapping alarms on the same tracker count once; this is the only
// ranking where naive duration summation would be materially wrong.
func (s *ReportService) TrackerConsolidation(ctx context.Context, stationID int, periods []report.Period, limit int) (*report.Result, error) {
	if err := s.validate(stationID, periods); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, report.ErrInvalidLimit
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	referenceNow := s.clock.Now().UTC()
	var events []report.AlarmEvent
	for _, record := range records {
		if !strings.HasPrefix(record.TeleObjectName, s.cfg.TrackerPrefix) {
			continue
		}
		events = append(events, record.Event())
	}
	return s.engine.TopGroups(ctx, events, referenceNow, limit)
}

// EquipmentRanking ranks equipment by alarm count or naive total
// duration.
func (s *ReportService) EquipmentRanking(ctx context.Context, stationID int, periods []report.Period, order Order, limit int) ([]EquipmentAggregate, error) {
	records, referenceNow, err := s.fetch(ctx, stationID, periods, limit)
	if err != nil {
		return nil, err
	}
	return s.rankRecords(records, referenceNow, order, limit, func(r report.AlarmRecord) (EquipmentAggregate, bool) {
		return EquipmentAggregate{Name: r.EquipmentName, SkidName: r.SkidName, DisplayName: r.EquipmentDisplayName()}, r.EquipmentName != ""
	}), nil
}

// TeleObjectRanking ranks tele-objects by alarm count or duration.
func (s *ReportService) TeleObjectRanking(ctx context.Context, stationID int, periods []report.Period, order Order, limit int) ([]EquipmentAggregate, error) {
	records, referenceNow, err := s.fetch(ctx, stationID, periods, limit)
	if err != nil {
		return nil, err
	}
	return s.rankRecords(records, referenceNow, order, limit, func(r report.AlarmRecord) (EquipmentAggregate, bool) {
		return EquipmentAggregate{Name: r.TeleObjectName, DisplayName: r.TeleObjectName}, r.TeleObjectName != ""
	}), nil
}

// NCUEquipmentRanking ranks network control units by duration.
func (s *ReportService) NCUEquipmentRanking(ctx context.Context, stationID int, periods []report.Period, limit int) ([]EquipmentAggregate, error) {
	records, referenceNow, err := s.fetch(ctx, stationID, periods, limit)
	if err != nil {
		return nil, err
	}
	return s.rankRecords(records, referenceNow, OrderByDuration, limit, func(r report.AlarmRecord) (EquipmentAggregate, bool) {
		if !strings.Contains(r.EquipmentName, s.cfg.NCUMarker) {
			return EquipmentAggregate{}, false
		}
		return EquipmentAggregate{Name: r.EquipmentName, SkidName: r.SkidName, DisplayName: r.EquipmentDisplayName()}, true
	}), nil
}

// CriticalEquipmentRanking ranks equipment by critical-severity
// alarmed time.
func (s *ReportService) CriticalEquipmentRanking(ctx context.Context, stationID int, periods []report.Period, limit int) ([]EquipmentAggregate, error) {
	records, referenceNow, err := s.fetch(ctx, stationID, periods, limit)
	if err != nil {
		return nil, err
	}
	return s.rankRecords(records, referenceNow, OrderByDuration, limit, func(r report.AlarmRecord) (EquipmentAggregate, bool) {
		if r.SeverityID != s.cfg.CriticalSeverityID {
			return EquipmentAggregate{}, false
		}
		return EquipmentAggregate{Name: r.EquipmentName, SkidName: r.SkidName, DisplayName: r.EquipmentDisplayName()}, true
	}), nil
}

// OpenAlarmRanking ranks equipment by alarms still active when read.
func (s *ReportService) OpenAlarmRanking(ctx context.Context, stationID int, periods []report.Period, limit int) ([]EquipmentAggregate, error) {
	records, referenceNow, err := s.fetch(ctx, stationID, periods, limit)
	if err != nil {
		return nil, err
	}
	return s.rankRecords(records, referenceNow, OrderByCount, limit, func(r report.AlarmRecord) (EquipmentAggregate, bool) {
		if !r.Open() {
			return EquipmentAggregate{}, false
		}
		return EquipmentAggregate{Name: r.EquipmentName, SkidName: r.SkidName, DisplayName: r.EquipmentDisplayName()}, true
	}), nil
}

// SeverityBreakdown returns per-severity alarmed time and its share of
// the total, ordered by severity id.
func (s *ReportService) SeverityBreakdown(ctx context.Context, stationID int, periods []report.Period) ([]SeveritySlice, error) {
	if err := s.validate(stationID, periods); err != nil {
		return nil, err
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	referenceNow := s.clock.Now().UTC()

	slices := make(map[int]*SeveritySlice)
	var total float64
	for _, record := range records {
		minutes := record.DurationMinutes(referenceNow)
		slice, ok := slices[record.SeverityID]
		if !ok {
			color := record.SeverityColor
			if color == "" {
				color = s.cfg.SeverityColors[record.SeverityID]
			}
			slice = &SeveritySlice{SeverityID: record.SeverityID, Name: record.SeverityName, Color: color}
			slices[record.SeverityID] = slice
		}
		slice.AlarmCount++
		slice.TotalMinutes += minutes
		total += minutes
	}

	result := make([]SeveritySlice, 0, len(slices))
	for _, slice := range slices {
		slice.TotalMinutes = s.round(slice.TotalMinutes)
		slice.Percent = s.round(percentOf(slice.TotalMinutes, total))
		result = append(result, *slice)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SeverityID < result[j].SeverityID
	})
	return result, nil
}

// DailyEvolution returns alarm count and duration per day, ordered by
// date. Days without alarms do not appear.
func (s *ReportService) DailyEvolution(ctx context.Context, stationID int, periods []report.Period) ([]DailyPoint, error) {
	if err := s.validate(stationID, periods); err != nil {
		return nil, err
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	referenceNow := s.clock.Now().UTC()

	byDay := make(map[string]*DailyPoint)
	for _, record := range records {
		day := record.StartAt.UTC().Format("2006-01-02")
		point, ok := byDay[day]
		if !ok {
			point = &DailyPoint{Date: day}
			byDay[day] = point
		}
		point.AlarmCount++
		point.TotalMinutes += record.DurationMinutes(referenceNow)
	}
	result := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		point.TotalMinutes = s.round(point.TotalMinutes)
		result = append(result, *point)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

// AckUserRanking ranks users by acknowledged alarms.
func (s *ReportService) AckUserRanking(ctx context.Context, stationID int, periods []report.Period, limit int) ([]UserAggregate, error) {
	if err := s.validate(stationID, periods); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, report.ErrInvalidLimit
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, record := range records {
		if !record.Acknowledged() || record.AckedBy == "" {
			continue
		}
		counts[record.AckedBy]++
	}
	result := make([]UserAggregate, 0, len(counts))
	for name, count := range counts {
		result = append(result, UserAggregate{Name: name, AckCount: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AckCount != result[j].AckCount {
			return result[i].AckCount > result[j].AckCount
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// KPIs computes the headline indicators for the selection.
func (s *ReportService) KPIs(ctx context.Context, stationID int, periods []report.Period) (KPISet, error) {
	if err := s.validate(stationID, periods); err != nil {
		return KPISet{}, err
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return KPISet{}, err
	}
	referenceNow := s.clock.Now().UTC()

	var alarmedMinutes float64
	var ackMinutes float64
	var ackCount int
	for _, record := range records {
		alarmedMinutes += record.DurationMinutes(referenceNow)
		if record.Acknowledged() && !record.AckedAt.Before(record.StartAt) {
			ackMinutes += record.AckedAt.Sub(record.StartAt).Minutes()
			ackCount++
		}
	}

	totalAlarms := len(records)
	periodMinutes := report.TotalMinutes(periods)
	meanAck := 0.0
	if ackCount > 0 {
		meanAck = ackMinutes / float64(ackCount)
	}

	return KPISet{
		TotalAlarms:         totalAlarms,
		TotalAlarmedMinutes: s.round(alarmedMinutes),
		MeanMinutesPerAlarm: s.round(meanMinutesPerAlarm(alarmedMinutes, totalAlarms)),
		MeanAckMinutes:      s.round(meanAck),
		AckRatePercent:      s.round(percentOf(float64(ackCount), float64(totalAlarms))),
		AvailabilityPercent: s.round(availabilityPercent(alarmedMinutes, periodMinutes)),
		MTBFHours:           s.round(mtbfHours(totalAlarms, periodMinutes/60)),
		MTTRHours:           s.round(mttrHours(alarmedMinutes/60, totalAlarms)),
		PeriodLabel:         report.PeriodsLabel(periods),
	}, nil
}

// ListAlarms returns one page of the drill-down alarm table.
func (s *ReportService) ListAlarms(ctx context.Context, stationID int, periods []report.Period, page, pageSize int) (AlarmPage, error) {
	if err := s.validate(stationID, periods); err != nil {
		return AlarmPage{}, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	items, total, err := s.records.ListPage(ctx, stationID, periods, (page-1)*pageSize, pageSize)
	if err != nil {
		return AlarmPage{}, err
	}
	return AlarmPage{Items: items, Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// FullReport assembles the exportable report in one pass.
func (s *ReportService) FullReport(ctx context.Context, stationID int, periods []report.Period) (*FullReport, error) {
	kpis, err := s.KPIs(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	equipment, err := s.EquipmentRanking(ctx, stationID, periods, OrderByDuration, s.cfg.DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	teleObjects, err := s.TeleObjectRanking(ctx, stationID, periods, OrderByDuration, s.cfg.DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	severity, err := s.SeverityBreakdown(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	trackers, err := s.TrackerConsolidation(ctx, stationID, periods, s.cfg.DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailyEvolution(ctx, stationID, periods)
	if err != nil {
		return nil, err
	}
	return &FullReport{
		StationID:           stationID,
		PeriodLabel:         report.PeriodsLabel(periods),
		GeneratedAt:         s.clock.Now().UTC(),
		KPIs:                kpis,
		EquipmentByDuration: equipment,
		TeleObjects:         teleObjects,
		Severity:            severity,
		Trackers:            trackers,
		Daily:               daily,
	}, nil
}

func (s *ReportService) validate(stationID int, periods []report.Period) error {
	if s == nil {
		return errors.New("report service: nil service")
	}
	if stationID <= 0 {
		return errors.New("report service: station id required")
	}
	return report.ValidatePeriods(periods, s.cfg.MaxPeriods)
}

func (s *ReportService) fetch(ctx context.Context, stationID int, periods []report.Period, limit int) ([]report.AlarmRecord, time.Time, error) {
	if err := s.validate(stationID, periods); err != nil {
		return nil, time.Time{}, err
	}
	if limit <= 0 {
		return nil, time.Time{}, report.ErrInvalidLimit
	}
	records, err := s.records.FetchRecords(ctx, stationID, periods)
	if err != nil {
		return nil, time.Time{}, err
	}
	return records, s.clock.Now().UTC(), nil
}

// rankRecords groups records by the classifier's key and ranks the
// groups. This is the naive per-row summation the dashboard rankings
// use; deduplicated time is the tracker consolidation's job.
func (s *ReportService) rankRecords(records []report.AlarmRecord, referenceNow time.Time, order Order, limit int, classify func(report.AlarmRecord) (EquipmentAggregate, bool)) []EquipmentAggregate {
	groups := make(map[string]*EquipmentAggregate)
	for _, record := range records {
		seed, ok := classify(record)
		if !ok {
			continue
		}
		aggregate, exists := groups[seed.DisplayName]
		if !exists {
			copied := seed
			aggregate = &copied
			groups[seed.DisplayName] = aggregate
		}
		aggregate.AlarmCount++
		aggregate.TotalMinutes += record.DurationMinutes(referenceNow)
	}

	result := make([]EquipmentAggregate, 0, len(groups))
	for _, aggregate := range groups {
		aggregate.MeanMinutes = s.round(aggregate.TotalMinutes / float64(aggregate.AlarmCount))
		aggregate.TotalMinutes = s.round(aggregate.TotalMinutes)
		result = append(result, *aggregate)
	}

	sort.Slice(result, func(i, j int) bool {
		switch order {
		case OrderByCount:
			if result[i].AlarmCount != result[j].AlarmCount {
				return result[i].AlarmCount > result[j].AlarmCount
			}
		default:
			if result[i].TotalMinutes != result[j].TotalMinutes {
				return result[i].TotalMinutes > result[j].TotalMinutes
			}
		}
		return result[i].DisplayName < result[j].DisplayName
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (s *ReportService) round(value float64) float64 {
	return report.RoundMinutes(value, s.cfg.RoundPrecision)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
