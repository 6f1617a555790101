package result

import "net/http"

// Unit is the payload of operations that succeed without returning data.
type Unit struct{}

// ErrorEntry is a single human-readable diagnostic relayed to callers.
type ErrorEntry struct {
	Text string `json:"text"`
}

// Outcome is the success/failure envelope returned by the upstream client and
// the order service. It is immutable: every transformation builds a new value.
type Outcome[T any] struct {
	success   bool
	errorCode int
	errors    []ErrorEntry
	data      T
}

// Success wraps data in a successful outcome.
func Success[T any](data T) Outcome[T] {
	return Outcome[T]{success: true, data: data}
}

// Failure builds a failed outcome carrying an HTTP-status-shaped code.
func Failure[T any](errorCode int, entries ...ErrorEntry) Outcome[T] {
	return Outcome[T]{
		errorCode: errorCode,
		errors:    append([]ErrorEntry{}, entries...),
	}
}

// FailureText is Failure with a single entry built from text.
func FailureText[T any](errorCode int, text string) Outcome[T] {
	return Failure[T](errorCode, ErrorEntry{Text: text})
}

// Propagate re-types a failed outcome, passing its code and entries through
// unchanged. A successful outcome cannot be propagated without its data and
// yields an internal failure.
func Propagate[U, T any](o Outcome[T]) Outcome[U] {
	if o.success {
		return FailureText[U](http.StatusInternalServerError, "cannot propagate a successful outcome")
	}
	return Failure[U](o.errorCode, o.errors...)
}

// Map transforms the payload of a successful outcome; failures pass through.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	if !o.success {
		return Propagate[U](o)
	}
	return Success(fn(o.data))
}

func (o Outcome[T]) IsSuccess() bool { return o.success }

// ErrorCode is meaningful only for failed outcomes.
func (o Outcome[T]) ErrorCode() int {
	if o.success {
		return 0
	}
	return o.errorCode
}

// Errors returns a copy of the error entries; never nil.
func (o Outcome[T]) Errors() []ErrorEntry {
	return append([]ErrorEntry{}, o.errors...)
}

// Data returns the payload. It is the zero value for failed outcomes.
func (o Outcome[T]) Data() T {
	return o.data
}
