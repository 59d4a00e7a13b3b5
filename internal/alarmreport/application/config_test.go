package application

import (
	"os"
	"path/filepath"
	"testing"

	report "solar-alarm-insights/internal/alarmreport/domain"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GroupDelimiter != report.DefaultGroupDelimiter {
		t.Fatalf("delimiter = %q", cfg.GroupDelimiter)
	}
	if cfg.MaxPeriods != 3 || cfg.PageSize != 50 || cfg.DefaultTopLimit != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TrackerPrefix != "TR-" || cfg.NCUMarker != "NCU" || cfg.CriticalSeverityID != 1 {
		t.Fatalf("unexpected markers: %+v", cfg)
	}
	if cfg.SeverityColors[1] == "" {
		t.Fatalf("missing critical severity color")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("REPORT_MAX_PERIODS", "6")
	t.Setenv("REPORT_TRACKER_PREFIX", "TRK-")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxPeriods != 6 || cfg.TrackerPrefix != "TRK-" {
		t.Fatalf("env override not applied: %+v", cfg)
	}
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	overlay := []byte("page_size: 25\nncu_marker: \"CCU\"\n")
	if err := os.WriteFile(path, overlay, 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("REPORT_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PageSize != 25 || cfg.NCUMarker != "CCU" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.GroupDelimiter != report.DefaultGroupDelimiter {
		t.Fatalf("untouched defaults must survive overlay: %q", cfg.GroupDelimiter)
	}
}

func TestLoadConfigRejectsBadLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := os.WriteFile(path, []byte("max_top_limit: 5\n"), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	t.Setenv("REPORT_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("default top limit above max must fail")
	}
}
