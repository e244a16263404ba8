package retry

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure for the retry decision.
type Kind int

const (
	// KindFatal failures are returned immediately.
	KindFatal Kind = iota
	// KindRetryable failures are retried while attempts and budget remain.
	KindRetryable
)

func (k Kind) String() string {
	if k == KindRetryable {
		return "retryable"
	}
	return "fatal"
}

// Error attaches a Kind to an underlying error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable marks err as a transient failure.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindRetryable, Err: err}
}

// Fatal marks err as a failure that must not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindFatal, Err: err}
}

// KindOf returns the classification carried by err. Errors that were never
// classified are fatal.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindFatal
}

// PermanentError is returned once a call will not be attempted again, either
// because the failure was fatal or because attempts or budget ran out.
type PermanentError struct {
	Attempts int
	Elapsed  time.Duration
	Err      error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("giving up after attempt %d (%s): %v", e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}
