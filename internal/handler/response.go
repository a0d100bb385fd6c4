// Package handler is the HTTP layer: it decodes requests, calls services,
// and encodes responses. No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ymatsu/zange-board/internal/apperror"
)

// errorResponse is the single error shape every endpoint returns:
//
//	{"ok":false,"error":"invalid credentials"}
//
// The error string is short and machine-readable; the frontend matches on
// it. Internal detail (SQL, stack traces) never appears here.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// writeJSON sends a JSON response. Headers and status must be written
// before the body — anything set after the first Write is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a domain error into an HTTP status and the standard
// error body. This is the only place domain errors meet status codes — the
// service layer stays HTTP-agnostic.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		default:
			// An AppError with an unmapped sentinel still must not leak.
			message = "internal error"
		}
	}

	writeJSON(w, status, errorResponse{OK: false, Error: message})
}
