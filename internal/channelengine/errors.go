package channelengine

import (
	"fmt"
	"time"
)

// StatusClientClosedRequest is reported when the caller canceled the call.
const StatusClientClosedRequest = 499

// TransportError is a network-level fault: no HTTP response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError is a rejection by the local governor or an upstream 429.
// RetryAfter is meaningful only when HasHint is set.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
	HasHint    bool
}

func (e *RateLimitError) Error() string {
	if !e.HasHint {
		return fmt.Sprintf("rate limited by %s", e.Source)
	}
	return fmt.Sprintf("rate limited by %s (retry after %s)", e.Source, e.RetryAfter)
}

// StatusError is a non-2xx upstream response other than 429.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// DecodeError is a 2xx response whose body does not match the expected shape.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to deserialize upstream response: %v; body: %s", e.Err, string(e.Body))
}

func (e *DecodeError) Unwrap() error { return e.Err }
