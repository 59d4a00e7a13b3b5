package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solar-alarm-insights/internal/alarmreport/application"
	report "solar-alarm-insights/internal/alarmreport/domain"
)

type stubReader struct {
	records []report.AlarmRecord
	err     error
}

func (s *stubReader) FetchRecords(context.Context, int, []report.Period) ([]report.AlarmRecord, error) {
	return s.records, s.err
}

func (s *stubReader) ListPage(_ context.Context, _ int, _ []report.Period, offset, limit int) ([]report.AlarmRecord, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}
	if offset > len(s.records) {
		offset = len(s.records)
	}
	return s.records[offset:end], len(s.records), nil
}

type stubDirectory struct {
	stations []report.Station
	periods  []report.Period
	err      error
}

func (s *stubDirectory) ListStations(context.Context) ([]report.Station, error) {
	return s.stations, s.err
}

func (s *stubDirectory) DiscoverPeriods(context.Context, int) ([]report.Period, error) {
	return s.periods, s.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testConfig() application.Config {
	return application.Config{
		GroupDelimiter:     report.DefaultGroupDelimiter,
		RoundPrecision:     2,
		MaxPeriods:         3,
		PageSize:           50,
		DefaultTopLimit:    10,
		MaxTopLimit:        50,
		TrackerPrefix:      "TR-",
		NCUMarker:          "NCU",
		CriticalSeverityID: 1,
	}
}

func newTestHandler(t *testing.T, reader *stubReader, directory *stubDirectory) *Handler {
	t.Helper()
	now := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
	service, err := application.NewReportService(reader, testConfig(), application.WithClock(fixedClock{now: now}))
	if err != nil {
		t.Fatalf("new report service: %v", err)
	}
	handler, err := NewHandler(service, directory, testConfig())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func get(t *testing.T, handler *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func sampleRecords() []report.AlarmRecord {
	start := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	return []report.AlarmRecord{
		{ID: "a1", EquipmentName: "Inverter 01", TeleObjectName: "TR-001 - Fault", SeverityID: 1, SeverityName: "Critical", StartAt: start, ClearedAt: start.Add(2 * time.Hour)},
		{ID: "a2", EquipmentName: "Inverter 01", TeleObjectName: "TR-001 - Comm", SeverityID: 1, SeverityName: "Critical", StartAt: start.Add(time.Hour), ClearedAt: start.Add(3 * time.Hour)},
	}
}

func TestHandlerStations(t *testing.T) {
	directory := &stubDirectory{stations: []report.Station{{ID: 7, Name: "Solar One"}}}
	handler := newTestHandler(t, &stubReader{}, directory)

	recorder := get(t, handler, "/api/v1/stations")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var stations []report.Station
	if err := json.Unmarshal(recorder.Body.Bytes(), &stations); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "Solar One" {
		t.Fatalf("unexpected stations: %+v", stations)
	}
}

func TestHandlerPeriods(t *testing.T) {
	directory := &stubDirectory{periods: []report.Period{{Year: 2025, Month: 5}, {Year: 2025, Month: 6}}}
	handler := newTestHandler(t, &stubReader{}, directory)

	recorder := get(t, handler, "/api/v1/periods?station_id=7")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var views []struct {
		Year  int    `json:"year"`
		Month int    `json:"month"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 || views[1].Label != "June 2025" {
		t.Fatalf("unexpected periods: %+v", views)
	}

	if recorder := get(t, handler, "/api/v1/periods"); recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing station_id must be 400, got %d", recorder.Code)
	}
}

func TestHandlerTrackerReport(t *testing.T) {
	handler := newTestHandler(t, &stubReader{records: sampleRecords()}, &stubDirectory{})

	recorder := get(t, handler, "/api/v1/reports/trackers?station_id=7&periods=2025-06")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var result report.Result
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Groups) != 1 || result.Groups[0].GroupKey != "TR-001" {
		t.Fatalf("unexpected groups: %+v", result.Groups)
	}
	if result.Groups[0].TotalDurationMinutes != 180.00 {
		t.Fatalf("overlap must be deduplicated: %+v", result.Groups[0])
	}
}

func TestHandlerReportValidation(t *testing.T) {
	handler := newTestHandler(t, &stubReader{records: sampleRecords()}, &stubDirectory{})

	cases := []struct {
		target string
		want   int
	}{
		{"/api/v1/reports/kpis?periods=2025-06", http.StatusBadRequest},
		{"/api/v1/reports/kpis?station_id=7", http.StatusBadRequest},
		{"/api/v1/reports/kpis?station_id=7&periods=2025-01,2025-02,2025-03,2025-04", http.StatusBadRequest},
		{"/api/v1/reports/trackers?station_id=7&periods=2025-06&limit=0", http.StatusBadRequest},
		{"/api/v1/reports/unknown?station_id=7&periods=2025-06", http.StatusNotFound},
		{"/api/v1/reports/kpis?station_id=7&periods=2025-06", http.StatusOK},
	}
	for _, tc := range cases {
		if recorder := get(t, handler, tc.target); recorder.Code != tc.want {
			t.Fatalf("GET %s = %d, want %d", tc.target, recorder.Code, tc.want)
		}
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &stubReader{}, &stubDirectory{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/kpis?station_id=7&periods=2025-06", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestHandlerAlarmsPagination(t *testing.T) {
	records := make([]report.AlarmRecord, 7)
	start := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	for i := range records {
		records[i] = report.AlarmRecord{ID: string(rune('a' + i)), StartAt: start}
	}
	handler := newTestHandler(t, &stubReader{records: records}, &stubDirectory{})

	recorder := get(t, handler, "/api/v1/alarms?station_id=7&periods=2025-06&page=2&page_size=5")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var page application.AlarmPage
	if err := json.Unmarshal(recorder.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalCount != 7 || page.Page != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestHandlerExports(t *testing.T) {
	handler := newTestHandler(t, &stubReader{records: sampleRecords()}, &stubDirectory{})

	xlsx := get(t, handler, "/api/v1/exports/report.xlsx?station_id=7&periods=2025-06")
	if xlsx.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d: %s", xlsx.Code, xlsx.Body.String())
	}
	if got := xlsx.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("xlsx content type = %q", got)
	}
	if xlsx.Body.Len() == 0 {
		t.Fatalf("empty xlsx body")
	}

	pdf := get(t, handler, "/api/v1/exports/report.pdf?station_id=7&periods=2025-06")
	if pdf.Code != http.StatusOK {
		t.Fatalf("pdf status = %d: %s", pdf.Code, pdf.Body.String())
	}
	if got := pdf.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("pdf content type = %q", got)
	}
	if pdf.Body.Len() == 0 {
		t.Fatalf("empty pdf body")
	}

	if recorder := get(t, handler, "/api/v1/exports/report.csv?station_id=7&periods=2025-06"); recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown export must be 404, got %d", recorder.Code)
	}
}
