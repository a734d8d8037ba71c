// Package httpx provides HTTP response utilities for the console's JSON
// endpoints (typeahead search, row-patch responses).
package httpx

import (
	"errors"
	"net/http"

	"github.com/ajovest/ajovest-console/internal/platform/upstream"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain and upstream errors to HTTP responses using
// RFC7807. Auth expiry surfaces as 401 so page scripts can redirect to login.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *upstream.APIError
	switch {
	case errors.Is(err, upstream.ErrAuthExpired):
		Problem(w, http.StatusUnauthorized, "Session Expired", "sign in again")
	case errors.As(err, &apiErr):
		Problem(w, apiErr.Status, "Upstream Error", apiErr.Message)
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
