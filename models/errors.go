package models

import (
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")

// IllegalTransitionError reports a refused status edge. The client-side
// validator returns it before a request is made; the backend re-validates
// and reports the same edge in its error envelope.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: %s -> %s", e.From, e.To)
}

// TransportError wraps any connect failure, timeout, or non-2xx response
// from the order backend. Recoverable: the caller may retry, the store is
// never touched.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("order service %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("order service %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
