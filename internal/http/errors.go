package http

import (
	"net/http"

	"github.com/xenocrm/crm-gateway/internal/errs"
)

// statusFor maps domain errors to HTTP codes at the request boundary.
// Validation and translation failures are the client's problem (400);
// generation and persistence failures are ours (500).
func statusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsTranslation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errJSON(msg string) map[string]string {
	return map[string]string{"error": msg}
}
