package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ledgerly/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses. Anything
// unmapped is an internal error with the detail kept out of the response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, core.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, core.ErrPersistence):
		writeJSONError(w, http.StatusBadGateway, "persistence failure, no changes were applied")
	case errors.Is(err, core.ErrUnsupportedField),
		errors.Is(err, core.ErrIndexOutOfRange),
		errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidBillingCycle),
		errors.Is(err, core.ErrInvalidRecurringSpan):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("Unhandled domain error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
