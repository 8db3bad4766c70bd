package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// NetTransport is a Transport backed by a *net/http.Client. Each instance
// carries exactly one exchange; the round trip runs on its own goroutine.
type NetTransport struct {
	client *http.Client

	mu              sync.Mutex
	method          string
	url             string
	header          http.Header
	withCredentials bool
	state           ReadyState
	listeners       []func(ReadyState)

	status     int
	rawHeaders string
	text       string
	err        error
	timing     TimingInfo
}

// NewNetTransport wraps client. A nil client gets a default one without a
// timeout.
func NewNetTransport(client *http.Client) *NetTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &NetTransport{
		client: client,
		header: make(http.Header),
	}
}

// NetAcquirer returns an Acquirer creating a NetTransport per exchange, all
// sharing client.
func NetAcquirer(client *http.Client) Acquirer {
	return func() Transport {
		return NewNetTransport(client)
	}
}

func (t *NetTransport) Open(method, rawURL string) error {
	if strings.TrimSpace(method) == "" {
		return errors.New("open: empty method")
	}
	if _, err := url.Parse(rawURL); err != nil {
		return fmt.Errorf("open: %w", err)
	}

	t.mu.Lock()
	t.method = method
	t.url = rawURL
	t.mu.Unlock()

	t.setState(Opened)
	return nil
}

// SetRequestHeader stores the header under the key exactly as given.
func (t *NetTransport) SetRequestHeader(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.header[key] = []string{value}
}

// SetWithCredentials controls whether the client's cookie jar takes part in
// the exchange.
func (t *NetTransport) SetWithCredentials(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.withCredentials = enabled
}

func (t *NetTransport) OnReadyStateChange(fn func(state ReadyState)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Send starts the round trip and returns immediately. A nil body sends no
// body at all.
func (t *NetTransport) Send(body []byte) error {
	t.mu.Lock()
	if t.state != Opened {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("send: transport is %s, want %s", state, Opened)
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequest(t.method, t.url, bodyReader)
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("send: %w", err)
	}
	for key, values := range t.header {
		httpReq.Header[key] = append([]string(nil), values...)
	}

	client := t.client
	if !t.withCredentials && client.Jar != nil {
		anonymous := *client
		anonymous.Jar = nil
		client = &anonymous
	}
	t.mu.Unlock()

	go t.roundTrip(client, httpReq)
	return nil
}

func (t *NetTransport) roundTrip(client *http.Client, httpReq *http.Request) {
	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			dnsEnd := time.Now()
			timing.DNSLookupTime = dnsEnd.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = dnsEnd
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
			if !dnsDone {
				// literal IP, no lookup happened
				lastPhaseEnd = connectStart
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				connectEnd := time.Now()
				timing.TCPConnectTime = connectEnd.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = connectEnd
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				tlsHandshakeEnd := time.Now()
				timing.TLSHandshakeTime = tlsHandshakeEnd.Sub(tlsHandshakeStart)
				lastPhaseEnd = tlsHandshakeEnd
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(context.Background(), trace))

	httpResp, err := client.Do(httpReq)
	if err != nil {
		timing.TotalTime = time.Since(timing.StartTime)
		t.finish(0, "", "", err, timing)
		return
	}
	defer httpResp.Body.Close()

	rawHeaders := formatHeaderBlock(httpResp.Header)
	t.mu.Lock()
	t.status = httpResp.StatusCode
	t.rawHeaders = rawHeaders
	t.mu.Unlock()
	t.setState(HeadersReceived)
	t.setState(Loading)

	contentTransferStart := time.Now()
	body, err := io.ReadAll(httpResp.Body)
	timing.ContentTransferTime = time.Since(contentTransferStart)
	timing.TotalTime = time.Since(timing.StartTime)
	if err != nil {
		t.finish(0, "", "", fmt.Errorf("read body: %w", err), timing)
		return
	}

	t.finish(httpResp.StatusCode, rawHeaders, string(body), nil, timing)
}

func (t *NetTransport) finish(status int, rawHeaders, text string, err error, timing TimingInfo) {
	t.mu.Lock()
	t.status = status
	t.rawHeaders = rawHeaders
	t.text = text
	t.err = err
	t.timing = timing
	t.mu.Unlock()

	t.setState(Done)
}

func (t *NetTransport) setState(state ReadyState) {
	t.mu.Lock()
	t.state = state
	listeners := append([]func(ReadyState){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (t *NetTransport) Status() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *NetTransport) AllResponseHeaders() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rawHeaders
}

func (t *NetTransport) ResponseText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// Err explains a status 0 completion.
func (t *NetTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *NetTransport) Timing() TimingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timing
}

// formatHeaderBlock renders headers the way a browser reports them: one
// "Key: Value" line per value, CRLF separated, keys sorted.
func formatHeaderBlock(header http.Header) string {
	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		for _, value := range header[key] {
			lines = append(lines, key+": "+value)
		}
	}
	return strings.Join(lines, "\r\n")
}
