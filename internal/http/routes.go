package httpx

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	scheduleRateLimit = rate.Limit(2)
	scheduleBurst     = 10
)

// NewRouter wires the API routes with logging, recovery, and per-IP rate
// limiting on the schedule endpoints.
func NewRouter(handlers *ScheduleHandlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	limited := RateLimit(logger, scheduleRateLimit, scheduleBurst)

	mux.Handle("POST /api/v1/schedules", limited(http.HandlerFunc(handlers.Submit)))
	mux.Handle("GET /api/v1/schedules/{id}/status", limited(http.HandlerFunc(handlers.Status)))
	mux.Handle("GET /api/v1/schedules/{id}/result", limited(http.HandlerFunc(handlers.Result)))
	mux.HandleFunc("GET /headpat", handlers.Headpat)

	var root http.Handler = mux
	root = Logging(logger)(root)
	root = Recover(logger)(root)
	return root
}
