package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/models"
)

// statusFor maps the error taxonomy onto HTTP status codes. Anything outside
// the taxonomy is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPreconditionFailed):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// resultCode names the outcome of an operation for metrics: "ok", the
// specific reason, or the error class.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	class, reason, ok := models.Codes(err)
	switch {
	case !ok:
		return "internal"
	case reason != "":
		return reason
	default:
		return class
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	resp := models.ErrorResponse{Error: "internal", Message: "internal error"}
	if class, reason, ok := models.Codes(err); ok {
		resp = models.ErrorResponse{Error: class, Reason: reason, Message: err.Error()}
	}
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

var errInvalidBody = fmt.Errorf("%w: invalid body", models.ErrInvalidInput)
