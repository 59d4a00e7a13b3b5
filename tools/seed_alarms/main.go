package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dsn           string
	stationID     int
	stationName   string
	month         string
	months        int
	trackers      int
	alarmsPerDay  int
	openAlarmRate float64
	seed          int64
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.stationID <= 0 {
		log.Fatal("station-id must be > 0")
	}
	if cfg.months <= 0 {
		log.Fatal("months must be > 0")
	}

	start, err := time.Parse("2006-01", cfg.month)
	if err != nil {
		log.Fatalf("invalid month: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(cfg.seed))

	if err := seedMasterData(ctx, db, cfg); err != nil {
		log.Fatalf("seed master data: %v", err)
	}

	for i := 0; i < cfg.months; i++ {
		monthStart := start.AddDate(0, i, 0)
		table := fmt.Sprintf("alarm_%d_%d_%02d", cfg.stationID, monthStart.Year(), int(monthStart.Month()))
		if err := createPartition(ctx, db, table); err != nil {
			log.Fatalf("create partition %s: %v", table, err)
		}
		count, err := seedMonth(ctx, db, rng, cfg, table, monthStart)
		if err != nil {
			log.Fatalf("seed %s: %v", table, err)
		}
		log.Printf("seeded %s: %d alarms", table, count)
	}

	log.Printf("alarm seed completed")
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.IntVar(&cfg.stationID, "station-id", envOrInt("STATION_ID", 1), "station id to seed")
	flag.StringVar(&cfg.stationName, "station-name", envOrDefault("STATION_NAME", "Solar One"), "station name")
	flag.StringVar(&cfg.month, "month", envOrDefault("MONTH", time.Now().UTC().Format("2006-01")), "first month to seed (YYYY-MM)")
	flag.IntVar(&cfg.months, "months", envOrInt("MONTHS", 3), "number of months to seed")
	flag.IntVar(&cfg.trackers, "trackers", envOrInt("TRACKERS", 40), "number of trackers")
	flag.IntVar(&cfg.alarmsPerDay, "alarms-per-day", envOrInt("ALARMS_PER_DAY", 30), "alarms per day")
	flag.Float64Var(&cfg.openAlarmRate, "open-rate", 0.05, "fraction of alarms left open")
	flag.Int64Var(&cfg.seed, "seed", 1, "random seed")
	flag.Parse()
	return cfg
}

func seedMasterData(ctx context.Context, db *sql.DB, cfg config) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS power_station (
	id INT PRIMARY KEY,
	name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS skid (
	id INT PRIMARY KEY,
	station_id INT NOT NULL,
	name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS equipment (
	id INT PRIMARY KEY,
	skid_id INT,
	name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS tele_object (
	id INT PRIMARY KEY,
	equipment_id INT NOT NULL,
	name TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS severity (
	id INT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT
)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor TEXT,
	role TEXT,
	action TEXT,
	report_kind TEXT,
	station_id INT,
	periods TEXT,
	metadata JSONB,
	payload_digest TEXT,
	ip TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`,
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO power_station (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, cfg.stationID, cfg.stationName); err != nil {
		return err
	}

	severities := []struct {
		id    int
		name  string
		color string
	}{
		{1, "Critical", "#f14e4e"},
		{2, "Major", "#fdc262"},
		{3, "Minor", "#ffe00a"},
		{4, "Warning", "#80FFFF"},
	}
	for _, severity := range severities {
		if _, err := db.ExecContext(ctx, `
INSERT INTO severity (id, name, color) VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, severity.id, severity.name, severity.color); err != nil {
			return err
		}
	}

	// One skid per 10 trackers, one NCU per skid, one tele-object per
	// tracker fault kind.
	skids := cfg.trackers/10 + 1
	teleObjectID := cfg.stationID * 100000
	for skid := 1; skid <= skids; skid++ {
		skidID := cfg.stationID*1000 + skid
		if _, err := db.ExecContext(ctx, `
INSERT INTO skid (id, station_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, skidID, cfg.stationID, fmt.Sprintf("SKID-%02d", skid)); err != nil {
			return err
		}
		ncuID := skidID*10 + 9
		if _, err := db.ExecContext(ctx, `
INSERT INTO equipment (id, skid_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, ncuID, skidID, fmt.Sprintf("NCU %02d", skid)); err != nil {
			return err
		}
	}
	faults := []string{"No communication", "Position fault", "Motor overcurrent", "Wind stow"}
	for tracker := 1; tracker <= cfg.trackers; tracker++ {
		skidID := cfg.stationID*1000 + (tracker-1)/10 + 1
		equipmentID := cfg.stationID*10000 + tracker
		if _, err := db.ExecContext(ctx, `
INSERT INTO equipment (id, skid_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, equipmentID, skidID, fmt.Sprintf("Tracker %03d", tracker)); err != nil {
			return err
		}
		for _, fault := range faults {
			teleObjectID++
			name := fmt.Sprintf("TR-%03d - %s", tracker, fault)
			if _, err := db.ExecContext(ctx, `
INSERT INTO tele_object (id, equipment_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`, teleObjectID, equipmentID, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func createPartition(ctx context.Context, db *sql.DB, table string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	tele_object_id INT NOT NULL,
	severity_id INT NOT NULL,
	start_at TIMESTAMPTZ NOT NULL,
	cleared_at TIMESTAMPTZ,
	acked_at TIMESTAMPTZ,
	acked_by TEXT,
	description TEXT
)`, table))
	return err
}

func seedMonth(ctx context.Context, db *sql.DB, rng *rand.Rand, cfg config, table string, monthStart time.Time) (int, error) {
	teleObjectIDs, err := listTeleObjectIDs(ctx, db, cfg.stationID)
	if err != nil {
		return 0, err
	}
	if len(teleObjectIDs) == 0 {
		return 0, fmt.Errorf("no tele objects for station %d", cfg.stationID)
	}

	monthEnd := monthStart.AddDate(0, 1, 0)
	days := int(monthEnd.Sub(monthStart).Hours() / 24)
	users := []string{"operator1", "operator2", "supervisor"}

	count := 0
	for day := 0; day < days; day++ {
		for i := 0; i < cfg.alarmsPerDay; i++ {
			start := monthStart.AddDate(0, 0, day).
				Add(time.Duration(rng.Intn(24)) * time.Hour).
				Add(time.Duration(rng.Intn(60)) * time.Minute)
			duration := time.Duration(5+rng.Intn(240)) * time.Minute
			cleared := sql.NullTime{Time: start.Add(duration), Valid: true}
			if rng.Float64() < cfg.openAlarmRate {
				cleared = sql.NullTime{}
			}
			var ackedAt sql.NullTime
			var ackedBy sql.NullString
			if rng.Float64() < 0.7 {
				ackedAt = sql.NullTime{Time: start.Add(time.Duration(1+rng.Intn(30)) * time.Minute), Valid: true}
				ackedBy = sql.NullString{String: users[rng.Intn(len(users))], Valid: true}
			}
			id := fmt.Sprintf("%s-%d-%d", table, day, i)
			severityID := 1 + rng.Intn(4)
			teleObjectID := teleObjectIDs[rng.Intn(len(teleObjectIDs))]
			if _, err := db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (id, tele_object_id, severity_id, start_at, cleared_at, acked_at, acked_by, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`, table),
				id, teleObjectID, severityID, start.UTC(), cleared, ackedAt, ackedBy, "seeded alarm"); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func listTeleObjectIDs(ctx context.Context, db *sql.DB, stationID int) ([]int, error) {
	rows, err := db.QueryContext(ctx, `
SELECT t.id
FROM tele_object t
JOIN equipment e ON e.id = t.equipment_id
JOIN skid s ON s.id = e.skid_id
WHERE s.station_id = $1`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
