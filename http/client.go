package http

import (
	"net/http"

	"github.com/wesleyorama2/jax/logging"
)

// Client creates Requests that share a transport source, default headers
// and a logger. Client is safe for concurrent use; the Requests it returns
// are not.
type Client struct {
	acquire Acquirer
	headers headerSet
	logger  logging.Logger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// DefaultClient backs the package-level Get, Post, Put, Del and New.
var DefaultClient = NewClient()

// NewClient creates a new client with the given options. Without
// WithTransport or WithHTTPClient it sends through a NetTransport built on a
// plain *net/http.Client.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		acquire: NetAcquirer(&http.Client{}),
		logger:  logging.NopLogger{},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithTransport sets where the client gets a Transport for each exchange.
// A nil Acquirer leaves the client without a transport.
func WithTransport(acquire Acquirer) ClientOption {
	return func(c *Client) {
		c.acquire = acquire
	}
}

// WithHTTPClient sends through a NetTransport using httpClient. Use this for
// custom transports, TLS settings or a cookie jar for CORS requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.acquire = NetAcquirer(httpClient)
	}
}

// WithHeader adds a default header to all requests made by this client.
// Headers set on individual requests override these defaults.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if key != "" {
			c.headers.set(key, value)
		}
	}
}

// WithLogger sets the logger used for exchange diagnostics.
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With(logging.F("component", "http"))
		}
	}
}

// Transport acquires a transport for one exchange, or nil if none is
// available.
func (c *Client) Transport() Transport {
	if c.acquire == nil {
		return nil
	}
	return c.acquire()
}

// New returns a Request for method and url.
func (c *Client) New(method, url string) *Request {
	return newRequest(c, method, url)
}

// Get returns a GET Request. When a callback is supplied the request is
// sent immediately.
func (c *Client) Get(url string, callback ...Callback) *Request {
	return c.verb(http.MethodGet, url, callback)
}

// Post returns a POST Request. When a callback is supplied the request is
// sent immediately.
func (c *Client) Post(url string, callback ...Callback) *Request {
	return c.verb(http.MethodPost, url, callback)
}

// Put returns a PUT Request. When a callback is supplied the request is
// sent immediately.
func (c *Client) Put(url string, callback ...Callback) *Request {
	return c.verb(http.MethodPut, url, callback)
}

// Del returns a DELETE Request. When a callback is supplied the request is
// sent immediately.
func (c *Client) Del(url string, callback ...Callback) *Request {
	return c.verb(http.MethodDelete, url, callback)
}

func (c *Client) verb(method, url string, callback []Callback) *Request {
	req := c.New(method, url)
	if len(callback) > 0 && callback[0] != nil {
		req.Send(callback[0])
	}
	return req
}

// New returns a Request for method and url on DefaultClient.
func New(method, url string) *Request {
	return DefaultClient.New(method, url)
}

// Get returns a GET Request on DefaultClient.
func Get(url string, callback ...Callback) *Request {
	return DefaultClient.Get(url, callback...)
}

// Post returns a POST Request on DefaultClient.
func Post(url string, callback ...Callback) *Request {
	return DefaultClient.Post(url, callback...)
}

// Put returns a PUT Request on DefaultClient.
func Put(url string, callback ...Callback) *Request {
	return DefaultClient.Put(url, callback...)
}

// Del returns a DELETE Request on DefaultClient.
func Del(url string, callback ...Callback) *Request {
	return DefaultClient.Del(url, callback...)
}
