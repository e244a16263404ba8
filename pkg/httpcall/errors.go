package httpcall

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType classifies a transport failure. The values double as the
// signatures operators see in run.log.
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "ConnectionError"
	ErrorTypeTimeout    ErrorType = "Timeout"
)

// TransportError is a network-level failure: dial, DNS, reset, timeout or a
// body that could not be read. It is always retryable.
type TransportError struct {
	Type   ErrorType
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Type, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a response that arrived with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %s for %s %s", e.Status, e.Method, e.URL)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func transportErrorType(err error) ErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeTimeout
	}
	return ErrorTypeConnection
}
