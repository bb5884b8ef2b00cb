package jsonrpc

import (
	"errors"
	"fmt"
	"net/http"
)

type (
	// TransportError wraps a failure that happened before any JSON-RPC
	// envelope came back: DNS, dial, TLS, timeouts, canceled contexts.
	TransportError struct {
		Err error
	}

	// HTTPError reports a response that arrived with a non-OK status and
	// no usable JSON-RPC error envelope in the body.
	HTTPError struct {
		StatusCode int
	}

	// DecodeError reports a body that was not the JSON we were promised.
	DecodeError struct {
		Err error
	}
)

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsPaymentRequired reports whether the call bounced off a 402 payment
// wall rather than failing outright.
func IsPaymentRequired(err error) bool {
	var httpErr *HTTPError

	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusPaymentRequired
}
