package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/http"
)

// requestOptions holds the builder flags shared by the verb commands.
type requestOptions struct {
	Headers []string
	Queries []string
	Fields  []string
	JSON    string
	Type    string
	Accept  string
	User    string
	CORS    bool
	NoCache bool
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("header", "H", []string{}, "Header as 'Key: Value' (can be used multiple times)")
	cmd.Flags().StringArrayP("query", "q", []string{}, "Query fragment such as 'page=2' (can be used multiple times)")
	cmd.Flags().StringArrayP("data", "d", []string{}, "Payload field as key=value (can be used multiple times)")
	cmd.Flags().StringP("json", "j", "", "JSON object merged into the payload; implies --type application/json")
	cmd.Flags().String("type", "", "Content-Type of the payload")
	cmd.Flags().String("accept", "", "Accept header")
	cmd.Flags().StringP("user", "u", "", "Basic auth credentials as user:password")
	cmd.Flags().Bool("cors", false, "Send credentials (cookies) with the request")
	cmd.Flags().Bool("no-cache", false, "Ask intermediaries not to serve a cached response")
}

func readRequestFlags(cmd *cobra.Command) requestOptions {
	var o requestOptions
	o.Headers, _ = cmd.Flags().GetStringArray("header")
	o.Queries, _ = cmd.Flags().GetStringArray("query")
	o.Fields, _ = cmd.Flags().GetStringArray("data")
	o.JSON, _ = cmd.Flags().GetString("json")
	o.Type, _ = cmd.Flags().GetString("type")
	o.Accept, _ = cmd.Flags().GetString("accept")
	o.User, _ = cmd.Flags().GetString("user")
	o.CORS, _ = cmd.Flags().GetBool("cors")
	o.NoCache, _ = cmd.Flags().GetBool("no-cache")
	return o
}

// apply configures req. Headers go on in flag order, then the typed setters.
func (o requestOptions) apply(req *http.Request) error {
	for _, header := range o.Headers {
		key, value, ok := strings.Cut(header, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid header %q, want 'Key: Value'", header)
		}
		req.Header(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	contentType := o.Type
	if contentType == "" && o.JSON != "" {
		contentType = "application/json"
	}
	if contentType != "" {
		req.Type(contentType)
	}
	if o.Accept != "" {
		req.Accept(o.Accept)
	}
	if o.User != "" {
		user, password, _ := strings.Cut(o.User, ":")
		req.Auth(user, password)
	}
	if o.CORS {
		req.CORS()
	}
	if o.NoCache {
		req.NoCache()
	}

	for _, q := range o.Queries {
		req.Query(q)
	}

	if o.JSON != "" {
		var fields map[string]any
		dec := json.NewDecoder(strings.NewReader(o.JSON))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return fmt.Errorf("invalid --json payload, want a JSON object: %w", err)
		}
		req.DataMap(fields)
	}
	for _, field := range o.Fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid data field %q, want key=value", field)
		}
		req.Data(key, value)
	}

	return nil
}

// normalizeURL adds http:// when no scheme is given.
func normalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "http://" + raw
}

// runVerb is the body shared by the get, post, put and delete commands.
func runVerb(cmd *cobra.Command, create func(*http.Client, string) *http.Request, rawURL string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	req := create(s.client, normalizeURL(rawURL))
	if err := readRequestFlags(cmd).apply(req); err != nil {
		return err
	}

	_, err = s.exchange(req)
	return err
}
