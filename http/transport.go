package http

import (
	"time"
)

// ReadyState is the progress of a single exchange on a Transport.
type ReadyState int

const (
	Unsent ReadyState = iota
	Opened
	HeadersReceived
	Loading
	Done
)

func (s ReadyState) String() string {
	switch s {
	case Unsent:
		return "UNSENT"
	case Opened:
		return "OPENED"
	case HeadersReceived:
		return "HEADERS_RECEIVED"
	case Loading:
		return "LOADING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Transport carries one exchange. A Request opens it, applies headers,
// subscribes to ready-state changes and sends the body; once the transport
// reports Done the status, headers and body must be readable.
//
// Implementations always run asynchronously: Send returns before Done is
// reported. A status of 0 at Done means the exchange was aborted.
type Transport interface {
	Open(method, url string) error
	SetRequestHeader(key, value string)
	SetWithCredentials(enabled bool)
	OnReadyStateChange(fn func(state ReadyState))
	Send(body []byte) error

	Status() int
	// AllResponseHeaders returns CRLF-joined "Key: Value" lines.
	AllResponseHeaders() string
	ResponseText() string
}

// Acquirer hands out a fresh Transport per exchange. Returning nil means no
// transport is available.
type Acquirer func() Transport

// transportError is implemented by transports that can explain a status 0.
type transportError interface {
	Err() error
}

// timedTransport is implemented by transports that measure their exchange.
type timedTransport interface {
	Timing() TimingInfo
}

// TimingInfo stores detailed timing information for an exchange.
// All durations represent the time spent in each phase of the request.
type TimingInfo struct {
	// StartTime is when the request started
	StartTime time.Time

	// DNSLookupTime is the time spent looking up the DNS address
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing a TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent performing the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte (TTFB) is the time from connection established to receiving the first byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the total time from request start to completion
	TotalTime time.Duration
}
