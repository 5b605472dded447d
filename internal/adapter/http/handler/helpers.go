package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/dto"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Success: false,
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrChargeNotFound),
		errors.Is(err, domain.ErrPostingNotFound),
		errors.Is(err, domain.ErrOperationNotFound),
		errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrConflictingAmount),
		errors.Is(err, domain.ErrUnknownOrigin),
		errors.Is(err, domain.ErrUnknownOperationType),
		errors.Is(err, domain.ErrInvalidOperationSign),
		errors.Is(err, domain.ErrCarryForwardNotPostable),
		errors.Is(err, domain.ErrChargeNotWithdrawable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCarryForwardExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
