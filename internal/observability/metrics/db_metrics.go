package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "partition_tables",
			Help: "Alarm history partition tables present",
		},
		func() float64 {
			return queryCount(db, logger, `
SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = 'public' AND table_name ~ '^alarm_[0-9]+_[0-9]{4}_[0-9]{2}$'`)
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stations",
			Help: "Stations in the catalogue",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM power_station")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
