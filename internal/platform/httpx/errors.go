package httpx

import (
	"errors"
	"net/http"

	"github.com/nayea-id/nayea/internal/shared"
)

// Machine codes carried in failure envelopes.
const (
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// RespondError maps domain errors to failure envelopes. Anything it does not
// recognize becomes a 500 with no internal detail leaked.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrExternalTokenRejected),
		errors.Is(err, shared.ErrBackendUnavailable):
		// All authentication failures collapse into one generic message so
		// callers cannot probe which emails exist.
		Fail(w, http.StatusUnauthorized, "Invalid email or password", CodeInvalidCredentials)
	case errors.Is(err, shared.ErrSessionExpired),
		errors.Is(err, shared.ErrSessionRevoked):
		Fail(w, http.StatusUnauthorized, "Authentication required", CodeAuthRequired)
	default:
		Fail(w, http.StatusInternalServerError, "Internal error", CodeInternal)
	}
}
