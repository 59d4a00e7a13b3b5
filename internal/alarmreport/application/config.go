package application

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	report "solar-alarm-insights/internal/alarmreport/domain"
)

// Config defines report tunables. The grouping delimiter and rounding
// precision are explicit inputs to every component; nothing reads them
// from hidden globals.
type Config struct {
	GroupDelimiter     string         `yaml:"group_delimiter"`
	RoundPrecision     int            `yaml:"round_precision"`
	MaxPeriods         int            `yaml:"max_periods"`
	PageSize           int            `yaml:"page_size"`
	DefaultTopLimit    int            `yaml:"default_top_limit"`
	MaxTopLimit        int            `yaml:"max_top_limit"`
	TrackerPrefix      string         `yaml:"tracker_prefix"`
	NCUMarker          string         `yaml:"ncu_marker"`
	CriticalSeverityID int            `yaml:"critical_severity_id"`
	SeverityColors     map[int]string `yaml:"severity_colors"`
}

// LoadConfig loads report configuration from defaults, an optional
// yaml file pointed at by REPORT_CONFIG, and env overrides.
func LoadConfig() (Config, error) {
	cfg := Config{
		GroupDelimiter:     report.DefaultGroupDelimiter,
		RoundPrecision:     report.DefaultRoundPrecision,
		MaxPeriods:         getenvIntDefault("REPORT_MAX_PERIODS", report.DefaultMaxPeriods),
		PageSize:           getenvIntDefault("REPORT_PAGE_SIZE", 50),
		DefaultTopLimit:    getenvIntDefault("REPORT_DEFAULT_TOP_LIMIT", 10),
		MaxTopLimit:        getenvIntDefault("REPORT_MAX_TOP_LIMIT", 50),
		TrackerPrefix:      getenvDefault("REPORT_TRACKER_PREFIX", "TR-"),
		NCUMarker:          getenvDefault("REPORT_NCU_MARKER", "NCU"),
		CriticalSeverityID: getenvIntDefault("REPORT_CRITICAL_SEVERITY_ID", 1),
		SeverityColors: map[int]string{
			1: "#f14e4e",
			2: "#fdc262",
			3: "#ffe00a",
			4: "#80FFFF",
			5: "#F0F0F0",
			6: "#000000",
		},
	}

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.GroupDelimiter == "" {
		return cfg, errors.New("report config: group delimiter required")
	}
	if cfg.RoundPrecision < 0 {
		return cfg, errors.New("report config: negative round precision")
	}
	if cfg.MaxPeriods <= 0 || cfg.PageSize <= 0 || cfg.DefaultTopLimit <= 0 || cfg.MaxTopLimit <= 0 {
		return cfg, errors.New("report config: limits must be positive")
	}
	if cfg.DefaultTopLimit > cfg.MaxTopLimit {
		return cfg, errors.New("report config: default top limit exceeds max")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
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
