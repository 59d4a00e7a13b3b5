package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"solar-alarm-insights/internal/alarmreport/application"
	report "solar-alarm-insights/internal/alarmreport/domain"
	"solar-alarm-insights/internal/alarmreport/interfaces"
	"solar-alarm-insights/internal/observability/metrics"
)

// StationDirectory lists stations and the months they have history
// for.
type StationDirectory interface {
	ListStations(ctx context.Context) ([]report.Station, error)
	DiscoverPeriods(ctx context.Context, stationID int) ([]report.Period, error)
}

// Handler provides the report HTTP endpoints.
type Handler struct {
	service  *application.ReportService
	stations StationDirectory
	cfg      application.Config
}

// NewHandler constructs a handler.
func NewHandler(service *application.ReportService, stations StationDirectory, cfg application.Config) (*Handler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	if stations == nil {
		return nil, errors.New("report handler: nil station directory")
	}
	return &Handler{service: service, stations: stations, cfg: cfg}, nil
}

// ServeHTTP handles /api/v1 report routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch {
	case r.URL.Path == "/api/v1/stations":
		h.handleStations(w, r)
	case r.URL.Path == "/api/v1/periods":
		h.handlePeriods(w, r)
	case r.URL.Path == "/api/v1/alarms":
		h.handleAlarms(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/reports/"):
		h.handleReport(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/reports/"))
	case strings.HasPrefix(r.URL.Path, "/api/v1/exports/"):
		h.handleExport(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/exports/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.stations.ListStations(r.Context())
	if err != nil {
		http.Error(w, "station lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stations)
}

func (h *Handler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	stationID, err := parseStationID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	periods, err := h.stations.DiscoverPeriods(r.Context(), stationID)
	if err != nil {
		http.Error(w, "period discovery failed", http.StatusInternalServerError)
		return
	}
	type periodView struct {
		Year  int    `json:"year"`
		Month int    `json:"month"`
		Label string `json:"label"`
	}
	views := make([]periodView, 0, len(periods))
	for _, period := range periods {
		views = append(views, periodView{Year: period.Year, Month: period.Month, Label: period.Label()})
	}
	writeJSON(w, views)
}

func (h *Handler) handleAlarms(w http.ResponseWriter, r *http.Request) {
	stationID, periods, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "page_size", h.cfg.PageSize)
	if pageSize > h.cfg.PageSize {
		pageSize = h.cfg.PageSize
	}
	result, err := h.service.ListAlarms(r.Context(), stationID, periods, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, kind string) {
	stationID, periods, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := h.limit(r)
	order := application.OrderByDuration
	if r.URL.Query().Get("order") == string(application.OrderByCount) {
		order = application.OrderByCount
	}

	started := time.Now()
	var payload any
	ctx := r.Context()
	switch kind {
	case "kpis":
		payload, err = h.service.KPIs(ctx, stationID, periods)
	case "equipment":
		payload, err = h.service.EquipmentRanking(ctx, stationID, periods, order, limit)
	case "teleobjects":
		payload, err = h.service.TeleObjectRanking(ctx, stationID, periods, order, limit)
	case "severity":
		payload, err = h.service.SeverityBreakdown(ctx, stationID, periods)
	case "daily":
		payload, err = h.service.DailyEvolution(ctx, stationID, periods)
	case "trackers":
		payload, err = h.service.TrackerConsolidation(ctx, stationID, periods, limit)
	case "open-alarms":
		payload, err = h.service.OpenAlarmRanking(ctx, stationID, periods, limit)
	case "ncu":
		payload, err = h.service.NCUEquipmentRanking(ctx, stationID, periods, limit)
	case "critical":
		payload, err = h.service.CriticalEquipmentRanking(ctx, stationID, periods, limit)
	case "ack-users":
		payload, err = h.service.AckUserRanking(ctx, stationID, periods, limit)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		metrics.ObserveQuery(kind, metrics.ResultError, time.Since(started))
		respondServiceError(w, err)
		return
	}
	if result, ok := payload.(*report.Result); ok {
		metrics.AddRejectedEvents(len(result.Rejected))
	}
	metrics.ObserveQuery(kind, metrics.ResultSuccess, time.Since(started))
	writeJSON(w, payload)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, name string) {
	var format string
	switch name {
	case "report.xlsx":
		format = "xlsx"
	case "report.pdf":
		format = "pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	stationID, periods, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	started := time.Now()
	full, err := h.service.FullReport(r.Context(), stationID, periods)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		respondServiceError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "xlsx":
		data, err = interfaces.BuildReportXLSX(full)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = interfaces.BuildReportPDF(full)
		contentType = "application/pdf"
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="alarm-`+name+`"`)
	_, _ = w.Write(data)
}

func (h *Handler) limit(r *http.Request) int {
	limit := parseIntQuery(r, "limit", h.cfg.DefaultTopLimit)
	if limit > h.cfg.MaxTopLimit {
		limit = h.cfg.MaxTopLimit
	}
	return limit
}

func parseStationID(r *http.Request) (int, error) {
	value := r.URL.Query().Get("station_id")
	if value == "" {
		return 0, errors.New("station_id is required")
	}
	stationID, err := strconv.Atoi(value)
	if err != nil || stationID <= 0 {
		return 0, errors.New("station_id must be a positive integer")
	}
	return stationID, nil
}

func parseSelection(r *http.Request) (int, []report.Period, error) {
	stationID, err := parseStationID(r)
	if err != nil {
		return 0, nil, err
	}
	periods, err := report.ParsePeriods(r.URL.Query().Get("periods"))
	if err != nil {
		return 0, nil, err
	}
	return stationID, periods, nil
}

// parseIntQuery keeps the fallback on absent or unparsable values but
// lets invalid values like limit=0 through so the service can reject
// them.
func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidLimit),
		errors.Is(err, report.ErrNoPeriods),
		errors.Is(err, report.ErrTooManyPeriods):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		http.Error(w, "report query failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
