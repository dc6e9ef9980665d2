package order

import (
	"errors"
	"fmt"
)

// ErrSubmissionInFlight is returned when a submission for the same cart is
// already running; the duplicate call performs no network I/O.
var ErrSubmissionInFlight = errors.New("order submission already in flight")

// ValidationError is a local pre-flight failure: the cart cannot be turned
// into a valid order payload. No network call was made and the cart is
// untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "order validation: " + e.Reason
}

// NetworkError wraps a submission request that failed to complete. The cart
// is preserved; the shopper may retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "order submission failed: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejection is a non-2xx response from the order API. Message is the
// server's error string, surfaced verbatim. The cart is preserved.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.Status, e.Message)
}

// Retryable reports whether the shopper may deliberately retry after err.
// Validation failures need a corrected cart, not a retry; transport failures
// and server rejections retry with the same cart.
func Retryable(err error) bool {
	var ne *NetworkError
	var sr *ServerRejection
	return errors.As(err, &ne) || errors.As(err, &sr)
}
