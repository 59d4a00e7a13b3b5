package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"solar-alarm-insights/internal/alarmreport/application"
)

// BuildReportPDF renders the alarm report as a PDF.
func BuildReportPDF(full *application.FullReport) ([]byte, error) {
	if full == nil {
		return nil, errors.New("export: nil report")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alarm Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Station: %d", full.StationID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", full.PeriodLabel))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", full.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total alarms: %d", full.KPIs.TotalAlarms))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Alarmed time (min): %.2f", full.KPIs.TotalAlarmedMinutes))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Availability: %.2f%%", full.KPIs.AvailabilityPercent))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Ack rate: %.2f%%", full.KPIs.AckRatePercent))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("MTBF (h): %.2f", full.KPIs.MTBFHours))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("MTTR (h): %.2f", full.KPIs.MTTRHours))
	pdf.Ln(8)

	// Equipment table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Equipment", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Alarms", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Minutes", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range full.EquipmentByDuration {
		pdf.CellFormat(80, 6, row.DisplayName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", row.AlarmCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", row.TotalMinutes), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Tracker table, deduplicated affected time
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Tracker", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Events", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Minutes", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	if full.Trackers != nil {
		for _, row := range full.Trackers.Groups {
			pdf.CellFormat(80, 6, row.GroupKey, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", row.TotalEventCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", row.TotalDurationMinutes), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders the alarm report as a workbook with one
// sheet per section.
func BuildReportXLSX(full *application.FullReport) ([]byte, error) {
	if full == nil {
		return nil, errors.New("export: nil report")
	}
	f := excelize.NewFile()
	summarySheet := "summary"
	equipmentSheet := "equipment"
	trackerSheet := "trackers"
	severitySheet := "severity"
	dailySheet := "daily"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(equipmentSheet)
	f.NewSheet(trackerSheet)
	f.NewSheet(severitySheet)
	f.NewSheet(dailySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Alarm Report")
	_ = f.SetCellValue(summarySheet, "A3", "Station")
	_ = f.SetCellValue(summarySheet, "B3", full.StationID)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", full.PeriodLabel)
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", full.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Total alarms")
	_ = f.SetCellValue(summarySheet, "B6", full.KPIs.TotalAlarms)
	_ = f.SetCellValue(summarySheet, "A7", "Alarmed minutes")
	_ = f.SetCellValue(summarySheet, "B7", full.KPIs.TotalAlarmedMinutes)
	_ = f.SetCellValue(summarySheet, "A8", "Mean minutes per alarm")
	_ = f.SetCellValue(summarySheet, "B8", full.KPIs.MeanMinutesPerAlarm)
	_ = f.SetCellValue(summarySheet, "A9", "Mean ack minutes")
	_ = f.SetCellValue(summarySheet, "B9", full.KPIs.MeanAckMinutes)
	_ = f.SetCellValue(summarySheet, "A10", "Ack rate (%)")
	_ = f.SetCellValue(summarySheet, "B10", full.KPIs.AckRatePercent)
	_ = f.SetCellValue(summarySheet, "A11", "Availability (%)")
	_ = f.SetCellValue(summarySheet, "B11", full.KPIs.AvailabilityPercent)
	_ = f.SetCellValue(summarySheet, "A12", "MTBF (h)")
	_ = f.SetCellValue(summarySheet, "B12", full.KPIs.MTBFHours)
	_ = f.SetCellValue(summarySheet, "A13", "MTTR (h)")
	_ = f.SetCellValue(summarySheet, "B13", full.KPIs.MTTRHours)

	_ = f.SetCellValue(equipmentSheet, "A1", "Equipment")
	_ = f.SetCellValue(equipmentSheet, "B1", "Alarms")
	_ = f.SetCellValue(equipmentSheet, "C1", "Minutes")
	_ = f.SetCellValue(equipmentSheet, "D1", "Mean minutes")
	for i, row := range full.EquipmentByDuration {
		r := i + 2
		_ = f.SetCellValue(equipmentSheet, fmt.Sprintf("A%d", r), row.DisplayName)
		_ = f.SetCellValue(equipmentSheet, fmt.Sprintf("B%d", r), row.AlarmCount)
		_ = f.SetCellValue(equipmentSheet, fmt.Sprintf("C%d", r), row.TotalMinutes)
		_ = f.SetCellValue(equipmentSheet, fmt.Sprintf("D%d", r), row.MeanMinutes)
	}

	_ = f.SetCellValue(trackerSheet, "A1", "Tracker")
	_ = f.SetCellValue(trackerSheet, "B1", "Events")
	_ = f.SetCellValue(trackerSheet, "C1", "Minutes")
	if full.Trackers != nil {
		for i, row := range full.Trackers.Groups {
			r := i + 2
			_ = f.SetCellValue(trackerSheet, fmt.Sprintf("A%d", r), row.GroupKey)
			_ = f.SetCellValue(trackerSheet, fmt.Sprintf("B%d", r), row.TotalEventCount)
			_ = f.SetCellValue(trackerSheet, fmt.Sprintf("C%d", r), row.TotalDurationMinutes)
		}
	}

	_ = f.SetCellValue(severitySheet, "A1", "Severity")
	_ = f.SetCellValue(severitySheet, "B1", "Alarms")
	_ = f.SetCellValue(severitySheet, "C1", "Minutes")
	_ = f.SetCellValue(severitySheet, "D1", "Share (%)")
	for i, row := range full.Severity {
		r := i + 2
		_ = f.SetCellValue(severitySheet, fmt.Sprintf("A%d", r), row.Name)
		_ = f.SetCellValue(severitySheet, fmt.Sprintf("B%d", r), row.AlarmCount)
		_ = f.SetCellValue(severitySheet, fmt.Sprintf("C%d", r), row.TotalMinutes)
		_ = f.SetCellValue(severitySheet, fmt.Sprintf("D%d", r), row.Percent)
	}

	_ = f.SetCellValue(dailySheet, "A1", "Date")
	_ = f.SetCellValue(dailySheet, "B1", "Alarms")
	_ = f.SetCellValue(dailySheet, "C1", "Minutes")
	for i, row := range full.Daily {
		r := i + 2
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("A%d", r), row.Date)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("B%d", r), row.AlarmCount)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("C%d", r), row.TotalMinutes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
