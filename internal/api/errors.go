package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/subtrack/subscription-service/internal/app"
	"github.com/subtrack/subscription-service/internal/domain"
	"github.com/subtrack/subscription-service/internal/store"
)

// apiError is the transport view of a service error.
type apiError struct {
	status  int
	message string
	details []string
}

// mapServiceError is the only place service errors become status codes.
// Anything unrecognised is a 500 with a generic message.
func mapServiceError(err error) apiError {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return apiError{status: http.StatusBadRequest, message: "Validation failed", details: validationErr.Messages()}
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return apiError{status: http.StatusConflict, message: conflictErr.Message}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPlan):
		return apiError{status: http.StatusBadRequest, message: "Invalid or inactive subscription plan"}
	case errors.Is(err, domain.ErrInvalidCursor):
		return apiError{status: http.StatusBadRequest, message: "Invalid cursor format"}
	case errors.Is(err, domain.ErrValidation):
		return apiError{status: http.StatusBadRequest, message: "Validation failed"}
	case errors.Is(err, store.ErrSubscriptionNotFound):
		return apiError{status: http.StatusNotFound, message: "Subscription not found"}
	case errors.Is(err, store.ErrPlanNotFound):
		return apiError{status: http.StatusNotFound, message: "Plan not found"}
	case errors.Is(err, store.ErrUserNotFound):
		return apiError{status: http.StatusNotFound, message: "User not found"}
	case errors.Is(err, domain.ErrNotFound):
		return apiError{status: http.StatusNotFound, message: "Resource not found"}
	case errors.Is(err, domain.ErrSubscriptionCancelled):
		return apiError{status: http.StatusConflict, message: "Subscription is cancelled"}
	case errors.Is(err, domain.ErrConflict):
		return apiError{status: http.StatusConflict, message: "Resource already exists"}
	case errors.Is(err, domain.ErrUnauthorized):
		return apiError{status: http.StatusUnauthorized, message: "Invalid username or password"}
	case errors.Is(err, domain.ErrRateLimited):
		return apiError{status: http.StatusTooManyRequests, message: "Too many login attempts, try again later"}
	}

	return apiError{status: http.StatusInternalServerError, message: "Internal server error"}
}

// writeServiceError maps err, logs it when it is unexpected, and writes the
// error envelope.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	mapped := mapServiceError(err)
	if mapped.status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "op", op, "path", r.URL.Path, "error", err)
	}

	var rateErr *app.RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds))
	}

	respondError(w, mapped.status, mapped.message, mapped.details)
}
