package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	report "solar-alarm-insights/internal/alarmreport/domain"
)

// Alarm history is partitioned into one table per station and month.
// Reports over several months UNION the partitions together; a missing
// partition means no alarms that month and is skipped, not an error.

const partitionColumns = "id, tele_object_id, severity_id, start_at, cleared_at, acked_at, acked_by, description"

// PartitionTableName returns the history table for one station and
// month. Both parts are integers, so the name is safe to interpolate.
func PartitionTableName(stationID int, period report.Period) string {
	return fmt.Sprintf("alarm_%d_%d_%02d", stationID, period.Year, period.Month)
}

// BuildUnionAll builds the UNION ALL subquery over existing partition
// tables. Returns "" when no partition exists.
func BuildUnionAll(tables []string) string {
	if len(tables) == 0 {
		return ""
	}
	selects := make([]string, 0, len(tables))
	for _, table := range tables {
		selects = append(selects, "SELECT "+partitionColumns+" FROM "+table)
	}
	return strings.Join(selects, " UNION ALL ")
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = 'public' AND table_name = $1
)`, table).Scan(&exists)
	return exists, err
}

// existingPartitions filters the selection down to partitions present
// in the database, preserving period order.
func existingPartitions(ctx context.Context, db *sql.DB, stationID int, periods []report.Period) ([]string, error) {
	if db == nil {
		return nil, errors.New("alarm history: nil db")
	}
	var tables []string
	for _, period := range periods {
		table := PartitionTableName(stationID, period)
		exists, err := tableExists(ctx, db, table)
		if err != nil {
			return nil, err
		}
		if exists {
			tables = append(tables, table)
		}
	}
	return tables, nil
}
