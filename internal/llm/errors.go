package llm

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks transient provider failures (network, timeout, 5xx).
// Callers may retry with backoff; this package does not retry internally.
var ErrUnavailable = errors.New("reasoning service unavailable")

// ErrEmptyResult marks a well-formed response carrying zero items where at
// least one was required. Retrying without a prompt change is unlikely to
// help.
var ErrEmptyResult = errors.New("reasoning service returned no items")

// MalformedResponseError reports a response that did not parse or did not
// match the expected shape.
type MalformedResponseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed reasoning response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed reasoning response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a MalformedResponseError.
func IsMalformed(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// Unavailable wraps a provider failure into the retryable taxonomy.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
