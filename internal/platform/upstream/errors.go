// Package upstream is the only network entry point for console page code.
// Every authenticated call to the platform API funnels through Client, which
// owns bearer-token injection and the global logout-on-auth-failure side
// effect. Page handlers never import net/http client primitives directly.
package upstream

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired is returned when the platform API answered 401 or 403.
	// The client has already destroyed the local session by the time callers
	// see this error; their only job is to redirect to login.
	ErrAuthExpired = errors.New("upstream: authentication expired")
	// ErrCanceled marks a request superseded or abandoned by the caller.
	// It must never reach an error banner.
	ErrCanceled = errors.New("upstream: request canceled")
)

// APIError carries the server-provided message for a non-2xx response so the
// page banner can show it, with the HTTP status for logging.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream: unexpected status %d", e.Status)
}

// AuthExpired reports whether err means the platform rejected the bearer
// token. The session is already gone; callers must send the actor to login.
func AuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

// Canceled reports whether err stems from context cancellation rather than a
// network or server failure.
func Canceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// BannerMessage converts an upstream error into the text shown in a
// page-local banner, falling back to a generic message naming the resource.
func BannerMessage(err error, resource string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to load " + resource + ". Please try again."
}
