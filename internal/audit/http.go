package audit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"solar-alarm-insights/internal/auth"
)

// Middleware records report queries and export downloads. Logging is
// best effort; a failed write never blocks the request.
func Middleware(logger Logger, errorLog func(format string, v ...any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if logger == nil {
				return
			}
			action, kind, ok := classify(r.URL.Path)
			if !ok {
				return
			}
			stationID, _ := strconv.Atoi(r.URL.Query().Get("station_id"))
			entry := Entry{
				Actor:      auth.SubjectFromContext(r.Context()),
				Role:       string(auth.RoleFromContext(r.Context())),
				Action:     action,
				ReportKind: kind,
				StationID:  stationID,
				Periods:    r.URL.Query().Get("periods"),
				IP:         ClientIP(r),
				UserAgent:  r.UserAgent(),
			}
			if err := logger.Log(r.Context(), entry); err != nil && errorLog != nil {
				errorLog("audit log failed: %v", err)
			}
		})
	}
}

func classify(path string) (action, kind string, ok bool) {
	switch {
	case strings.HasPrefix(path, "/api/v1/reports/"):
		return ActionReportQuery, strings.TrimPrefix(path, "/api/v1/reports/"), true
	case strings.HasPrefix(path, "/api/v1/exports/"):
		return ActionReportExport, strings.TrimPrefix(path, "/api/v1/exports/"), true
	case path == "/api/v1/alarms":
		return ActionAlarmListQuery, "", true
	default:
		return "", "", false
	}
}

// ClientIP extracts client ip from common headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
