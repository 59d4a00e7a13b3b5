package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	report "solar-alarm-insights/internal/alarmreport/domain"
	"solar-alarm-insights/internal/observability/metrics"
)

// AlarmHistoryRepository reads alarm rows from the monthly partition
// tables and joins the master data needed by the reports.
type AlarmHistoryRepository struct {
	db *sql.DB
}

// NewAlarmHistoryRepository constructs a repository.
func NewAlarmHistoryRepository(db *sql.DB) *AlarmHistoryRepository {
	return &AlarmHistoryRepository{db: db}
}

const recordSelect = `
SELECT a.id, a.start_at, a.cleared_at, a.acked_at, a.acked_by, a.description,
	t.name, e.name, COALESCE(s.name, ''),
	sv.id, sv.name, COALESCE(sv.color, '')
FROM (%s) a
JOIN tele_object t ON t.id = a.tele_object_id
JOIN equipment e ON e.id = t.equipment_id
LEFT JOIN skid s ON s.id = e.skid_id
JOIN severity sv ON sv.id = a.severity_id`

// FetchRecords returns every alarm of the station in the selected
// months, ordered by start time.
func (r *AlarmHistoryRepository) FetchRecords(ctx context.Context, stationID int, periods []report.Period) ([]report.AlarmRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm history: nil db")
	}
	union, err := r.union(ctx, stationID, periods)
	if err != nil || union == "" {
		return nil, err
	}
	query := fmt.Sprintf(recordSelect, union) + " ORDER BY a.start_at"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, stationID)
}

// ListPage returns one page of alarms ordered most recent first, plus
// the total row count for the selection.
func (r *AlarmHistoryRepository) ListPage(ctx context.Context, stationID int, periods []report.Period, offset, limit int) ([]report.AlarmRecord, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("alarm history: nil db")
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, errors.New("alarm history: invalid page window")
	}
	union, err := r.union(ctx, stationID, periods)
	if err != nil {
		return nil, 0, err
	}
	if union == "" {
		return nil, 0, nil
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+union+") a").Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(recordSelect, union) + " ORDER BY a.start_at DESC LIMIT $1 OFFSET $2"
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	records, err := scanRecords(rows, stationID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *AlarmHistoryRepository) union(ctx context.Context, stationID int, periods []report.Period) (string, error) {
	tables, err := existingPartitions(ctx, r.db, stationID, periods)
	if err != nil {
		return "", err
	}
	metrics.ObservePartitionsQueried(len(tables))
	return BuildUnionAll(tables), nil
}

type recordScanner interface {
	Scan(dest ...any) error
}

func scanRecords(rows *sql.Rows, stationID int) ([]report.AlarmRecord, error) {
	var records []report.AlarmRecord
	for rows.Next() {
		record, err := scanRecord(rows, stationID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanRecord(row recordScanner, stationID int) (report.AlarmRecord, error) {
	var record report.AlarmRecord
	var clearedAt sql.NullTime
	var ackedAt sql.NullTime
	var ackedBy sql.NullString
	var description sql.NullString
	if err := row.Scan(
		&record.ID,
		&record.StartAt,
		&clearedAt,
		&ackedAt,
		&ackedBy,
		&description,
		&record.TeleObjectName,
		&record.EquipmentName,
		&record.SkidName,
		&record.SeverityID,
		&record.SeverityName,
		&record.SeverityColor,
	); err != nil {
		return report.AlarmRecord{}, err
	}
	record.StationID = stationID
	record.StartAt = record.StartAt.UTC()
	if clearedAt.Valid {
		record.ClearedAt = clearedAt.Time.UTC()
	}
	if ackedAt.Valid {
		record.AckedAt = ackedAt.Time.UTC()
	}
	if ackedBy.Valid {
		record.AckedBy = ackedBy.String
	}
	if description.Valid {
		record.Description = description.String
	}
	return record, nil
}
