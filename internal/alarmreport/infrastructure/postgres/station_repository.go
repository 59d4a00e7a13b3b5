package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"

	report "solar-alarm-insights/internal/alarmreport/domain"
)

// StationRepository reads the station catalogue and discovers which
// months have alarm history.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository constructs a repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// ListStations returns all stations ordered by name.
func (r *StationRepository) ListStations(ctx context.Context) ([]report.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name
FROM power_station
ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []report.Station
	for rows.Next() {
		var station report.Station
		if err := rows.Scan(&station.ID, &station.Name); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

var partitionPattern = regexp.MustCompile(`^alarm_(\d+)_(\d{4})_(\d{2})$`)

// DiscoverPeriods returns the months that have a partition table for
// the station, oldest first.
func (r *StationRepository) DiscoverPeriods(ctx context.Context, stationID int) ([]report.Period, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public' AND table_name LIKE 'alarm_%'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []report.Period
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, err
		}
		period, ok := ParsePartitionTable(table, stationID)
		if !ok {
			continue
		}
		periods = append(periods, period)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	report.SortPeriods(periods)
	return periods, nil
}

// ParsePartitionTable extracts the period from a partition table name
// when it belongs to the given station.
func ParsePartitionTable(table string, stationID int) (report.Period, bool) {
	match := partitionPattern.FindStringSubmatch(table)
	if match == nil {
		return report.Period{}, false
	}
	station, _ := strconv.Atoi(match[1])
	if station != stationID {
		return report.Period{}, false
	}
	year, _ := strconv.Atoi(match[2])
	month, _ := strconv.Atoi(match[3])
	period := report.Period{Year: year, Month: month}
	if !period.Valid() {
		return report.Period{}, false
	}
	return period, true
}
