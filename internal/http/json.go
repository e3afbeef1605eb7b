// Package httpx implements the HTTP surface of the scheduling service: the
// JSON envelope, error mapping, middleware, and route handlers.
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

// Envelope is the JSON wrapper every response uses:
// {"success": bool, "data": T?, "error": string?}.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// WriteJSON writes a success envelope with the given status code.
func WriteJSON(w http.ResponseWriter, code int, data any) {
	writeEnvelope(w, code, Envelope{Success: true, Data: data})
}

// WriteError maps an error to its HTTP status and writes a failure envelope.
// Server errors log at error level, client errors at warn level, and database
// detail never leaks to the client.
func WriteError(logger *slog.Logger, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		message = appErr.PublicMessage()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "err", err)
	} else {
		logger.Warn("request rejected", "status", status, "err", err)
	}

	writeEnvelope(w, status, Envelope{Success: false, Error: &message})
}

func writeEnvelope(w http.ResponseWriter, code int, env Envelope) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(env); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects surface here; nothing to recover.
		return
	}
}

// DecodeJSON decodes the request body into dst, writing a BadRequest envelope
// on failure. Returns false when the response has already been written.
func DecodeJSON(logger *slog.Logger, w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(logger, w, apperrors.BadRequestf("invalid request body: %v", err))
		return false
	}
	return true
}
