package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/jax/http"
	"github.com/wesleyorama2/jax/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request) string
	FormatResponse(resp *http.Response) string
	FormatError(err error) string
	FormatSummary(s stats.Summary) string
}

// GetFormatter returns the formatter for format, falling back to text.
func GetFormatter(format OutputFormat, verbose, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Queries   []string          `json:"queries,omitempty" yaml:"queries,omitempty"`
	Data      map[string]any    `json:"data,omitempty" yaml:"data,omitempty"`
	CORS      bool              `json:"cors,omitempty" yaml:"cors,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an exchange
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	Status    int               `json:"status" yaml:"status"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Data      any               `json:"data,omitempty" yaml:"data,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
	Timing    *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// ErrorData is emitted for exchanges that produced no response.
type ErrorData struct {
	Error     string `json:"error" yaml:"error"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

func requestData(req *http.Request) RequestData {
	headers := make(map[string]string)
	for _, h := range req.HeaderSet() {
		headers[h.Key] = h.Value
	}
	return RequestData{
		Method:    req.Method(),
		URL:       req.URL(),
		Headers:   headers,
		Queries:   req.Queries(),
		Data:      req.Payload(),
		CORS:      req.CORSEnabled(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// responseData includes timing only when verbose.
func responseData(resp *http.Response, verbose bool) ResponseData {
	data := ResponseData{
		Status:    resp.Status,
		Headers:   resp.Headers,
		Data:      resp.Data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if resp.Error != nil {
		data.Error = resp.Error.Error()
	}
	if verbose {
		t := resp.Timing
		data.Timing = &TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		}
	}
	return data
}

func errorData(err error) ErrorData {
	return ErrorData{Error: err.Error(), Timestamp: time.Now().Format(time.RFC3339)}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v any) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, "failed to marshal: "+err.Error()) + "\n"
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(requestData(req))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(responseData(resp, f.Verbose))
}

// FormatError formats a failed exchange as JSON
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(errorData(err))
}

// FormatSummary formats run totals as JSON
func (f *JSONFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(s)
}

// YAMLFormatter formats output as YAML documents
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v any) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("---\nerror: failed to marshal: %s\n", err)
	}
	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(requestData(req))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(responseData(resp, f.Verbose))
}

// FormatError formats a failed exchange as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(errorData(err))
}

// FormatSummary formats run totals as YAML
func (f *YAMLFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(s)
}
