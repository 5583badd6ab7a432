package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sanhik/contentos/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors onto HTTP status codes. Unexpected errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, err error, logContext string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorBody("permission denied"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid credentials"))
	default:
		slog.Error(logContext, slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
