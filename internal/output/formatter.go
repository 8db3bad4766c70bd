package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/wesleyorama2/jax/http"
	"github.com/wesleyorama2/jax/internal/stats"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatRequest formats a request for display. Headers are listed in the
// order they will be applied.
func (f *Formatter) FormatRequest(req *http.Request) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n", f.scheme.Method.Sprint(req.Method()), f.scheme.URL.Sprint(req.URL()))

	headers := req.HeaderSet()
	if f.Verbose || len(headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, h := range headers {
			fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(h.Key), f.scheme.HeaderValue.Sprint(h.Value))
		}
	}

	if req.CORSEnabled() {
		buf.WriteString("  Credentials: include\n")
	}

	if payload := req.Payload(); len(payload) > 0 {
		buf.WriteString("  Data: ")
		body, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(&buf, "%v", payload)
		} else {
			buf.WriteString(formatJSONString(string(body)))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.statusColor(resp).Sprint(resp.Status),
		resp.Timing.TotalTime.Milliseconds())

	if resp.Error != nil {
		fmt.Fprintf(&buf, "  %s %s\n", ErrorIcon(f.NoColor), f.scheme.Error.Sprint(resp.Error))
	}

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
		fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
		fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())

		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(k), f.scheme.HeaderValue.Sprint(resp.Headers[k]))
		}
	}

	if resp.Text != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(resp.Text))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatError formats an exchange that produced no response.
func (f *Formatter) FormatError(err error) string {
	return fmt.Sprintf("%s %s\n", ErrorIcon(f.NoColor), f.scheme.Error.Sprint(err))
}

// FormatSummary formats the totals of a collection run.
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder

	icon := SuccessIcon(f.NoColor)
	if s.Failed > 0 {
		icon = ErrorIcon(f.NoColor)
	}
	fmt.Fprintf(&buf, "%s %s: %d requests, %d succeeded, %d failed\n",
		icon, f.scheme.Highlight.Sprint("Summary"), s.Total, s.Succeeded, s.Failed)

	if s.Latency.Count > 0 {
		fmt.Fprintf(&buf, "  Latency: %s\n", latencyLine(s.Latency))
	}
	if f.Verbose {
		for _, name := range s.SortedNames() {
			fmt.Fprintf(&buf, "    %s: %s\n", name, latencyLine(s.Requests[name]))
		}
	}

	return buf.String()
}

func latencyLine(l stats.LatencyStats) string {
	ms := func(d time.Duration) string { return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond)) }
	return fmt.Sprintf("min %s, p50 %s, p90 %s, p99 %s, max %s",
		ms(l.Min), ms(l.P50), ms(l.P90), ms(l.P99), ms(l.Max))
}

func (f *Formatter) statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return f.scheme.StatusOK
	case resp.IsRedirect():
		return f.scheme.StatusWarn
	default:
		return f.scheme.StatusError
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
