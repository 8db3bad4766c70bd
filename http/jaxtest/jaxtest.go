// Package jaxtest provides a scripted Transport for exercising requests
// without a network.
package jaxtest

import (
	"strings"
	"sync"

	jaxhttp "github.com/wesleyorama2/jax/http"
)

// Reply scripts how a Stub completes.
type Reply struct {
	Status int
	// Header is the raw CRLF-joined header block, see HeaderBlock.
	Header string
	Body   string

	// Err is reported through Err() on completion, as a transport explains
	// a status 0.
	Err error
	// OpenErr and SendErr make Open or Send fail.
	OpenErr error
	SendErr error
	// RepeatDone reports Done twice.
	RepeatDone bool
}

// HeaderBlock builds a header block from alternating keys and values.
func HeaderBlock(kv ...string) string {
	var lines []string
	for i := 0; i+1 < len(kv); i += 2 {
		lines = append(lines, kv[i]+": "+kv[i+1])
	}
	return strings.Join(lines, "\r\n")
}

// Stub is a Transport that records what it is given and answers with its
// Reply on a separate goroutine.
type Stub struct {
	reply Reply
	gate  <-chan struct{}

	mu              sync.Mutex
	method          string
	url             string
	headers         []jaxhttp.HeaderField
	withCredentials bool
	body            []byte
	sent            bool
	listeners       []func(jaxhttp.ReadyState)
	done            chan struct{}
}

// NewStub returns a Stub answering with reply.
func NewStub(reply Reply) *Stub {
	return &Stub{reply: reply, done: make(chan struct{})}
}

func (s *Stub) Open(method, url string) error {
	if s.reply.OpenErr != nil {
		return s.reply.OpenErr
	}
	s.mu.Lock()
	s.method = method
	s.url = url
	s.mu.Unlock()
	s.notify(jaxhttp.Opened)
	return nil
}

func (s *Stub) SetRequestHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = append(s.headers, jaxhttp.HeaderField{Key: key, Value: value})
}

func (s *Stub) SetWithCredentials(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withCredentials = enabled
}

func (s *Stub) OnReadyStateChange(fn func(state jaxhttp.ReadyState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Stub) Send(body []byte) error {
	if s.reply.SendErr != nil {
		return s.reply.SendErr
	}

	s.mu.Lock()
	if body != nil {
		s.body = append([]byte(nil), body...)
	}
	s.sent = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		if s.gate != nil {
			<-s.gate
		}
		s.notify(jaxhttp.HeadersReceived)
		s.notify(jaxhttp.Loading)
		s.notify(jaxhttp.Done)
		if s.reply.RepeatDone {
			s.notify(jaxhttp.Done)
		}
	}()
	return nil
}

func (s *Stub) notify(state jaxhttp.ReadyState) {
	s.mu.Lock()
	listeners := append([]func(jaxhttp.ReadyState){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

func (s *Stub) Status() int                { return s.reply.Status }
func (s *Stub) AllResponseHeaders() string { return s.reply.Header }
func (s *Stub) ResponseText() string       { return s.reply.Body }
func (s *Stub) Err() error                 { return s.reply.Err }

// Method returns the method passed to Open.
func (s *Stub) Method() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// URL returns the URL passed to Open.
func (s *Stub) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Headers returns the request headers in the order they were applied.
func (s *Stub) Headers() []jaxhttp.HeaderField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]jaxhttp.HeaderField(nil), s.headers...)
}

// Body returns the body passed to Send, nil when none was sent.
func (s *Stub) Body() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body
}

// WithCredentials reports whether credentials were requested.
func (s *Stub) WithCredentials() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withCredentials
}

// Sent reports whether Send was called.
func (s *Stub) Sent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Wait blocks until the stub has finished reporting its ready states.
func (s *Stub) Wait() {
	<-s.done
}

// Recorder hands out a new Stub per exchange and keeps them for inspection.
type Recorder struct {
	reply Reply

	mu    sync.Mutex
	gate  chan struct{}
	stubs []*Stub
}

// NewRecorder returns a Recorder whose stubs answer with reply.
func NewRecorder(reply Reply) *Recorder {
	return &Recorder{reply: reply}
}

// Acquire satisfies http.Acquirer.
func (r *Recorder) Acquire() jaxhttp.Transport {
	stub := NewStub(r.reply)

	r.mu.Lock()
	defer r.mu.Unlock()
	stub.gate = r.gate
	r.stubs = append(r.stubs, stub)
	return stub
}

// Hold makes stubs acquired from now on wait before completing until the
// returned release func is called.
func (r *Recorder) Hold() (release func()) {
	gate := make(chan struct{})

	r.mu.Lock()
	r.gate = gate
	r.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Stubs returns every stub acquired so far.
func (r *Recorder) Stubs() []*Stub {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Stub(nil), r.stubs...)
}

// Last returns the most recently acquired stub, or nil.
func (r *Recorder) Last() *Stub {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stubs) == 0 {
		return nil
	}
	return r.stubs[len(r.stubs)-1]
}
