package http

import (
	"errors"
	"fmt"
)

// ErrTransportUnavailable is delivered to the callback when the client could
// not acquire a transport for the exchange.
var ErrTransportUnavailable = errors.New("jax: no transport available")

// CrossDomainError reports an exchange that completed with status 0, which
// is how a transport signals an aborted or refused request.
type CrossDomainError struct {
	Method string
	URL    string

	// Err is the transport's own explanation, when it offers one.
	Err error
}

func (e *CrossDomainError) Error() string {
	msg := "Cross domain request is not allowed"
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CrossDomainError) Unwrap() error { return e.Err }

// ParseError wraps whatever went wrong while building the Response view of a
// completed exchange.
type ParseError struct {
	Original error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Unable to parse response: %v", e.Original)
}

func (e *ParseError) Unwrap() error { return e.Original }

// StatusError is set on Response.Error for 4xx and 5xx statuses. It is never
// passed to the callback's error slot.
type StatusError struct {
	Method string
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Cannot %s %s", e.Method, e.URL)
}
