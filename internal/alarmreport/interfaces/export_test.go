package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"solar-alarm-insights/internal/alarmreport/application"
	report "solar-alarm-insights/internal/alarmreport/domain"
)

func sampleFullReport() *application.FullReport {
	return &application.FullReport{
		StationID:   7,
		PeriodLabel: "June 2025",
		GeneratedAt: time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC),
		KPIs: application.KPISet{
			TotalAlarms:         2,
			TotalAlarmedMinutes: 180.00,
			AvailabilityPercent: 99.58,
			PeriodLabel:         "June 2025",
		},
		EquipmentByDuration: []application.EquipmentAggregate{
			{Name: "Inverter 01", DisplayName: "Inverter 01", AlarmCount: 2, TotalMinutes: 180.00, MeanMinutes: 90.00},
		},
		Severity: []application.SeveritySlice{
			{SeverityID: 1, Name: "Critical", AlarmCount: 2, TotalMinutes: 180.00, Percent: 100.00},
		},
		Trackers: &report.Result{
			Groups: []report.GroupAggregate{
				{GroupKey: "TR-001", TotalDurationMinutes: 180.00, TotalEventCount: 2},
			},
		},
		Daily: []application.DailyPoint{
			{Date: "2025-06-15", AlarmCount: 2, TotalMinutes: 180.00},
		},
	}
}

func TestBuildReportXLSX(t *testing.T) {
	data, err := BuildReportXLSX(sampleFullReport())
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	want := map[string]bool{"summary": false, "equipment": false, "trackers": false, "severity": false, "daily": false}
	for _, sheet := range sheets {
		if _, ok := want[sheet]; ok {
			want[sheet] = true
		}
	}
	for sheet, found := range want {
		if !found {
			t.Fatalf("missing sheet %q in %v", sheet, sheets)
		}
	}

	tracker, err := workbook.GetCellValue("trackers", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if tracker != "TR-001" {
		t.Fatalf("tracker cell = %q", tracker)
	}
}

func TestBuildReportPDF(t *testing.T) {
	data, err := BuildReportPDF(sampleFullReport())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", data[:8])
	}
}

func TestBuildReportNilInput(t *testing.T) {
	if _, err := BuildReportXLSX(nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
	if _, err := BuildReportPDF(nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
}
