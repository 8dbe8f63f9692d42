package publisher

import (
	"errors"
	"fmt"
)

// ErrUnconfirmed marks a publish that the broker accepted on the wire but
// never positively confirmed. Callers treat it as a warning, not a failure.
var ErrUnconfirmed = errors.New("delivery not confirmed by broker")

// Error tags a publisher failure with the operation that produced it and
// whether retrying later can help. Retry logic branches on the tag, never
// on the concrete error type.
type Error struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnconfirmed reports whether err is (or wraps) a missing delivery
// confirmation.
func IsUnconfirmed(err error) bool {
	return errors.Is(err, ErrUnconfirmed)
}

// IsRetryable reports whether err is a publisher error that a later cycle
// may succeed at. Unknown errors are treated as non-retryable.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
