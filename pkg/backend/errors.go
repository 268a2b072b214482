package backend

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"syscall"
)

var (
	// ErrNotConfigured is returned when no backend URL is set.
	ErrNotConfigured = errors.New("backend is not configured")

	// ErrTaskRejected is returned when the backend answers a task call without a task id.
	ErrTaskRejected = errors.New("backend did not return a task id")
)

// StatusError represents a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := "backend returned status " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsTimeoutOrConnectionError reports whether err means the backend could not
// be reached, as opposed to the backend answering with an error.
func IsTimeoutOrConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
