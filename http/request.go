package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wesleyorama2/jax/internal/util"
	"github.com/wesleyorama2/jax/logging"
)

// Callback receives the outcome of an exchange. Exactly one of err and resp
// is non-nil. HTTP error statuses arrive as a Response with Error set.
type Callback func(err error, resp *Response)

// State is where a Request is in its lifecycle.
type State int32

const (
	Configuring State = iota
	Sent
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Configuring:
		return "configuring"
	case Sent:
		return "sent"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// HeaderField is one entry of a request's header set.
type HeaderField struct {
	Key   string
	Value string
}

// headerSet keeps first-insertion order; setting an existing key replaces
// its value in place.
type headerSet struct {
	keys   []string
	values map[string]string
}

func (h *headerSet) set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

func (h *headerSet) get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

func (h *headerSet) fields() []HeaderField {
	out := make([]HeaderField, 0, len(h.keys))
	for _, k := range h.keys {
		out = append(out, HeaderField{Key: k, Value: h.values[k]})
	}
	return out
}

// Request is a fluent, mutable description of one HTTP exchange. Every
// configuration method returns the same *Request so calls can be chained.
// A Request is not safe for concurrent configuration.
type Request struct {
	client *Client

	mu      sync.Mutex
	method  string
	rawURL  string
	url     string
	headers headerSet
	queries []string
	payload map[string]any
	cors    bool

	state atomic.Int32
}

// NewRequest creates a Request bound to DefaultClient.
func NewRequest(method, url string) *Request {
	return DefaultClient.New(method, url)
}

func newRequest(client *Client, method, url string) *Request {
	r := &Request{
		client:  client,
		method:  method,
		rawURL:  url,
		url:     url,
		payload: make(map[string]any),
	}
	for _, f := range client.headers.fields() {
		r.headers.set(f.Key, f.Value)
	}
	return r
}

// Header sets a single header. An empty key is ignored.
func (r *Request) Header(key, value string) *Request {
	if key == "" {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers.set(key, value)
	return r
}

// Headers merges every entry of fields into the header set, in key order.
func (r *Request) Headers(fields map[string]string) *Request {
	if len(fields) == 0 {
		return r
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if k != "" {
			r.headers.set(k, fields[k])
		}
	}
	return r
}

// Type sets Content-Type. An empty value is ignored.
func (r *Request) Type(value string) *Request {
	if value == "" {
		return r
	}
	return r.Header("Content-Type", value)
}

// Accept sets the Accept header.
func (r *Request) Accept(value string) *Request {
	return r.Header("Accept", value)
}

// Auth sets a Basic Authorization header.
func (r *Request) Auth(user, password string) *Request {
	data := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return r.Header("Authorization", "Basic "+data)
}

// CORS asks the transport to carry credentials with the exchange.
func (r *Request) CORS() *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cors = true
	return r
}

// NoCache sets the headers that keep intermediaries from caching the response.
func (r *Request) NoCache() *Request {
	return r.Headers(map[string]string{
		"Cache-Control":    "no-cache",
		"Expires":          "-1",
		"X-Requested-With": "XMLHttpRequest",
	})
}

// Query appends a fragment to the URL's query string. Strings are taken
// verbatim; maps, url.Values and structs with `url` tags are encoded first.
// Nil, zero scalars such as 0 and false, and objects that encode to nothing
// are ignored.
func (r *Request) Query(value any) *Request {
	var fragment string
	switch v := value.(type) {
	case nil:
		return r
	case string:
		fragment = v
	default:
		switch {
		case util.IsObject(v):
			fragment = util.Serialize(v)
		case !reflect.ValueOf(v).IsZero():
			fragment = fmt.Sprint(v)
		}
	}
	if fragment == "" {
		return r
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, fragment)
	return r
}

// Data sets a single payload field. An empty key is ignored.
func (r *Request) Data(key string, value any) *Request {
	if key == "" {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload[key] = value
	return r
}

// DataMap merges fields into the payload. The map is copied, so later
// changes to it do not affect the request.
func (r *Request) DataMap(fields map[string]any) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range fields {
		r.payload[k] = v
	}
	return r
}

// Send performs the exchange and reports the outcome to callback exactly
// once, never before Send has returned. Calling Send again starts a second,
// independent exchange with the same configuration.
//
// There is no timeout: if the transport never completes, callback is never
// invoked.
func (r *Request) Send(callback Callback) {
	if callback == nil {
		callback = func(error, *Response) {}
	}

	r.mu.Lock()
	r.url = r.finalURL()
	method, target := r.method, r.url
	headers := r.headers.fields()
	contentType, _ := r.headers.get("Content-Type")
	payload := make(map[string]any, len(r.payload))
	for k, v := range r.payload {
		payload[k] = v
	}
	cors := r.cors
	r.mu.Unlock()

	r.state.Store(int32(Sent))

	logger := r.client.logger.With(logging.F("method", method), logging.F("url", target))

	var sending atomic.Bool
	sending.Store(true)
	defer sending.Store(false)

	var once sync.Once
	deliver := func(err error, resp *Response) {
		once.Do(func() {
			if err != nil {
				r.state.Store(int32(Failed))
			} else {
				r.state.Store(int32(Completed))
			}
			if sending.Load() {
				go callback(err, resp)
				return
			}
			callback(err, resp)
		})
	}
	fail := func(err error) {
		logger.Warn("request failed", logging.F("error", err))
		deliver(err, nil)
	}

	t := r.client.Transport()
	if t == nil {
		fail(ErrTransportUnavailable)
		return
	}

	if err := t.Open(method, target); err != nil {
		fail(fmt.Errorf("%s %s: %w", method, target, err))
		return
	}

	if cors {
		t.SetWithCredentials(true)
	}

	for _, h := range headers {
		t.SetRequestHeader(h.Key, h.Value)
	}

	body, err := encodePayload(payload, contentType)
	if err != nil {
		fail(fmt.Errorf("encode payload: %w", err))
		return
	}

	t.OnReadyStateChange(func(state ReadyState) {
		if state != Done {
			return
		}

		if t.Status() == 0 {
			var cause error
			if te, ok := t.(transportError); ok {
				cause = te.Err()
			}
			fail(&CrossDomainError{Method: method, URL: target, Err: cause})
			return
		}

		resp, err := newResponse(r, t)
		if err != nil {
			fail(&ParseError{Original: err})
			return
		}

		logger.Debug("request completed", logging.F("status", resp.Status))
		deliver(nil, resp)
	})

	logger.Debug("sending request", logging.F("headers", len(headers)), logging.F("bodyBytes", len(body)))

	if err := t.Send(body); err != nil {
		fail(fmt.Errorf("%s %s: %w", method, target, err))
	}
}

// Do sends the request and blocks until the exchange completes.
func (r *Request) Do() (*Response, error) {
	type result struct {
		resp *Response
		err  error
	}

	done := make(chan result, 1)
	r.Send(func(err error, resp *Response) {
		done <- result{resp: resp, err: err}
	})

	res := <-done
	return res.resp, res.err
}

// finalURL appends the joined query fragments to the original URL. It is
// recomputed on each Send so repeated sends do not stack the query.
func (r *Request) finalURL() string {
	if len(r.queries) == 0 {
		return r.rawURL
	}

	sep := "?"
	if strings.Contains(r.rawURL, "?") {
		sep = "&"
	}
	return r.rawURL + sep + strings.Join(r.queries, "&")
}

// encodePayload returns nil for an empty payload, JSON when the content type
// is exactly application/json, and a query string otherwise.
func encodePayload(payload map[string]any, contentType string) ([]byte, error) {
	if util.Size(payload) == 0 {
		return nil, nil
	}

	if contentType == "application/json" {
		return json.Marshal(payload)
	}

	return []byte(util.Serialize(payload)), nil
}

// Method returns the request's HTTP method.
func (r *Request) Method() string {
	return r.method
}

// URL returns the URL the request was or will be sent to. Query fragments
// are only appended once Send has run.
func (r *Request) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url
}

// HeaderValue returns the value set for key, matching case exactly.
func (r *Request) HeaderValue(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, _ := r.headers.get(key)
	return v
}

// HeaderSet returns a copy of the headers in the order they were first set.
func (r *Request) HeaderSet() []HeaderField {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headers.fields()
}

// Queries returns a copy of the accumulated query fragments.
func (r *Request) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// Payload returns a copy of the payload fields.
func (r *Request) Payload() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any, len(r.payload))
	for k, v := range r.payload {
		out[k] = v
	}
	return out
}

// CORSEnabled reports whether CORS was called.
func (r *Request) CORSEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cors
}

// State reports the lifecycle state of the most recent exchange.
func (r *Request) State() State {
	return State(r.state.Load())
}
