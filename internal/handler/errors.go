package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/cyclelog/internal/calendar"
	"github.com/pkordes/cyclelog/internal/domain"
)

var errBodyTooLarge = errors.New("request body too large")

// errorDetail maps an error to its HTTP status and body. A 404 from
// upstream is both a rejection and a not-found; not-found wins.
func errorDetail(err error) (int, ErrorDetail) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorDetail{Code: "payload_too_large", Message: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorDetail{Code: "not_found", Message: calendar.Describe(err)}
	case errors.Is(err, calendar.ErrDeclined):
		return http.StatusPreconditionRequired, ErrorDetail{Code: "confirmation_required", Message: "pass confirm=true to delete"}
	case errors.Is(err, domain.ErrRejected):
		return http.StatusBadGateway, ErrorDetail{Code: "upstream_rejected", Message: calendar.Describe(err)}
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "upstream_unavailable", Message: calendar.Describe(err)}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorDetail(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads the request body into dst. Bodies cut off by the max
// body size middleware map to errBodyTooLarge.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.LogService.Create: validation error: type is required" → "type is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
