package httpx

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
	"github.com/shiftwork/scheduling-service/internal/service"
)

// ScheduleHandlers serves the schedule job API.
type ScheduleHandlers struct {
	svc    *service.SchedulingService
	logger *slog.Logger
}

// NewScheduleHandlers builds the handler set.
func NewScheduleHandlers(svc *service.SchedulingService, logger *slog.Logger) *ScheduleHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleHandlers{svc: svc, logger: logger.With("component", "http")}
}

// submitRequest is the POST /api/v1/schedules body.
type submitRequest struct {
	StaffGroupID    uuid.UUID  `json:"staff_group_id"`
	PeriodBeginDate model.Date `json:"period_begin_date"`
}

// Submit handles POST /api/v1/schedules: 202 with the Pending job record.
func (h *ScheduleHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !DecodeJSON(h.logger, w, r, &req) {
		return
	}
	if req.StaffGroupID == uuid.Nil {
		WriteError(h.logger, w, apperrors.BadRequest("staff_group_id is required"))
		return
	}
	if req.PeriodBeginDate.IsZero() {
		WriteError(h.logger, w, apperrors.BadRequest("period_begin_date is required"))
		return
	}

	rec, err := h.svc.SubmitSchedule(r.Context(), req.StaffGroupID, req.PeriodBeginDate)
	if err != nil {
		WriteError(h.logger, w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, rec)
}

// Status handles GET /api/v1/schedules/{id}/status.
func (h *ScheduleHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.GetStatus(r.Context(), id)
	if err != nil {
		WriteError(h.logger, w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// Result handles GET /api/v1/schedules/{id}/result.
func (h *ScheduleHandlers) Result(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetResult(r.Context(), id)
	if err != nil {
		WriteError(h.logger, w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Headpat handles GET /headpat, the liveness endpoint.
func (h *ScheduleHandlers) Headpat(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, "headpat received, scheduling service is alive")
}

func (h *ScheduleHandlers) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(h.logger, w, apperrors.BadRequestf("invalid job id %q", raw))
		return uuid.Nil, false
	}
	return id, true
}
