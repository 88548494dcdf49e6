package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arashmdn/student-portal/internal/domain"
	"github.com/arashmdn/student-portal/pkg/logger"
)

// ErrorResponse is the JSON error envelope every failure returns.
type ErrorResponse struct {
	Error            string `json:"error"`
	Code             string `json:"code,omitempty"`
	Field            string `json:"field,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

// Stable error codes per failure category.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeLocked             = "LOCKED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

const msgRetryLater = "خطای داخلی رخ داده است. لطفاً دوباره تلاش کنید."

func write(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteError writes a structured JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	write(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Locked writes the lockout response with the remaining window.
func Locked(w http.ResponseWriter, remainingSeconds int64) {
	write(w, http.StatusTooManyRequests, ErrorResponse{
		Error:            "به دلیل تلاش‌های ناموفق متعدد، ورود موقتاً مسدود شده است.",
		Code:             CodeLocked,
		RemainingSeconds: remainingSeconds,
	})
}

// FromError maps the service error taxonomy to a response. Storage errors
// are logged server-side and surfaced as a generic retryable failure.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		forbidden  *domain.ForbiddenError
		locked     *domain.LockedError
		storage    *domain.StorageError
	)

	switch {
	case errors.As(err, &validation):
		write(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: validation.Message,
			Code:  CodeInvalidInput,
			Field: validation.Field,
		})
	case errors.As(err, &conflict):
		write(w, http.StatusConflict, ErrorResponse{
			Error: conflict.Message,
			Code:  CodeConflict,
			Field: conflict.Field,
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "کد ملی یا شماره دانشجویی اشتباه است", CodeInvalidCredentials)
	case errors.As(err, &forbidden):
		WriteError(w, http.StatusForbidden, forbidden.Message, CodeForbidden)
	case errors.As(err, &locked):
		Locked(w, locked.RemainingSeconds)
	case errors.Is(err, domain.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "توکن نامعتبر یا منقضی شده است", CodeInvalidToken)
	case errors.As(err, &storage):
		logger.ErrorContext(r.Context(), "storage failure", "error", storage.Unwrap())
		WriteError(w, http.StatusInternalServerError, msgRetryLater, CodeInternalError)
	default:
		logger.ErrorContext(r.Context(), "unhandled error", "error", err)
		WriteError(w, http.StatusInternalServerError, msgRetryLater, CodeInternalError)
	}
}
