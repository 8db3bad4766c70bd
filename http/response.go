package http

import (
	"encoding/json"
	"errors"
	"mime"
	"strings"

	"github.com/wesleyorama2/jax/internal/util"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Response is the normalized view of a completed exchange. It is built once
// the transport reports Done and is not modified afterwards.
type Response struct {
	// Request is the builder that produced this exchange.
	Request *Request

	// Status is the HTTP status code reported by the transport.
	Status int

	// Headers holds the parsed response headers. Content-Type defaults to
	// application/json when the server sent none.
	Headers map[string]string

	// Data is the decoded body: nil when the body is empty, the JSON value for
	// JSON, a map[string]string for form-encoded bodies, otherwise the text.
	Data any

	// Text is the raw response body.
	Text string

	// Error is a *StatusError for 4xx and 5xx statuses and nil otherwise.
	Error error

	// Timing is filled in when the transport measures the exchange.
	Timing TimingInfo
}

func newResponse(req *Request, t Transport) (*Response, error) {
	resp := &Response{
		Request: req,
		Status:  t.Status(),
		Headers: parseHeaders(t.AllResponseHeaders()),
		Text:    t.ResponseText(),
	}

	data, err := parseData(resp.Text, resp.Headers["Content-Type"])
	if err != nil {
		return nil, err
	}
	resp.Data = data

	if tt, ok := t.(timedTransport); ok {
		resp.Timing = tt.Timing()
	}

	if shortStatus := resp.Status / 100; shortStatus == 4 || shortStatus == 5 {
		resp.Error = &StatusError{
			Method: req.Method(),
			URL:    req.URL(),
			Status: resp.Status,
		}
	}

	return resp, nil
}

// parseHeaders splits a CRLF header block into a map. Each line is split on
// its first ": "; lines without one are skipped.
func parseHeaders(block string) map[string]string {
	headers := make(map[string]string)

	for _, line := range strings.Split(block, "\r\n") {
		index := strings.Index(line, ": ")
		if index > 0 {
			headers[line[:index]] = line[index+2:]
		}
	}

	if headers["Content-Type"] == "" {
		headers["Content-Type"] = contentTypeJSON
	}

	return headers
}

// parseData decodes body according to the media type of contentType.
// Parameters such as charset are ignored.
func parseData(body, contentType string) (any, error) {
	if body == "" {
		return nil, nil
	}

	switch mediaType(contentType) {
	case contentTypeJSON:
		var data any
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			return nil, err
		}
		return data, nil
	case contentTypeForm:
		return util.Unserialize(body)
	default:
		return body, nil
	}
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// Header returns the value of the response header key, matching case exactly.
func (r *Response) Header(key string) string {
	return r.Headers[key]
}

// DecodeJSON unmarshals the raw body into v.
func (r *Response) DecodeJSON(v any) error {
	if r.Text == "" {
		return errors.New("empty response body")
	}
	return json.Unmarshal([]byte(r.Text), v)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.Status >= 500 && r.Status < 600
}
