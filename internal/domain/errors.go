package domain

import (
	"errors"
	"fmt"
)

// ErrAuthTimeout is returned when the device code expires before the user
// completes authorization. Callers check it with errors.Is.
var ErrAuthTimeout = errors.New("authentication timed out")

// APIError is a non-success response from the remote provider. It keeps the
// status line and raw body verbatim so the user can diagnose the failure
// against the provider's own error documentation.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Body)
}
