package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the requested log entry does not exist,
// either in the cached month or upstream (HTTP 404).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails client-side validation
// (e.g. treatment type without a treatment name, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrRejected is returned when the upstream API answered but refused the
// request: a non-2xx status or a {"success": false} body.
var ErrRejected = errors.New("rejected by server")

// ErrNetwork is returned when a request to the upstream API never completed.
var ErrNetwork = errors.New("network failure")

// ErrNotSupported is returned when the configured API flavor has no endpoint
// for the requested operation.
var ErrNotSupported = errors.New("not supported")

// RemoteError carries the status and message of an upstream rejection.
// It matches ErrRejected with errors.Is, and also ErrNotFound for a 404.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrRejected, e.Status)
	}
	return fmt.Sprintf("%s: %s", ErrRejected, e.Message)
}

// Unwrap exposes the sentinels this error stands for.
func (e *RemoteError) Unwrap() []error {
	if e.Status == http.StatusNotFound {
		return []error{ErrRejected, ErrNotFound}
	}
	return []error{ErrRejected}
}
