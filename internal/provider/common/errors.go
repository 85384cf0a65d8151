package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRefreshRejected   = errors.New("token refresh rejected")
	ErrInvalidRepository = errors.New("invalid repository name")
)

// StatusError reports a non-200 answer from the remote API.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func NewStatusError(op string, statusCode int) *StatusError {
	return &StatusError{Op: op, StatusCode: statusCode}
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
