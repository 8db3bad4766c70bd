// Package schema checks response bodies against JSON Schema documents.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wesleyorama2/jax/http"
)

const resourceName = "schema.json"

// ValidationErrors collects every violation found in a document.
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Schema is a compiled JSON Schema.
type Schema struct {
	compiled *jsonschema.Schema
}

// Compile parses and compiles a schema from its JSON text.
func Compile(text string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// CompileValue compiles a schema given either as JSON text or as an already
// decoded document, as found in collection files.
func CompileValue(v any) (*Schema, error) {
	switch s := v.(type) {
	case nil:
		return nil, errors.New("invalid schema: empty")
	case string:
		return Compile(s)
	default:
		text, err := json.Marshal(normalize(v))
		if err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
		return Compile(string(text))
	}
}

// Validate checks body, which must be JSON text. A non-nil error is either
// a parse failure or a ValidationErrors listing each violation.
func (s *Schema) Validate(body string) error {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	err := s.compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return collect(verr)
	}
	return ValidationErrors{err}
}

// ValidateResponse checks the body of resp against s.
func (s *Schema) ValidateResponse(resp *http.Response) error {
	if resp == nil {
		return errors.New("no response to validate")
	}
	return s.Validate(resp.Text)
}

func collect(err *jsonschema.ValidationError) ValidationErrors {
	var out ValidationErrors
	if err.Message != "" && len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, fmt.Errorf("validation error at %s: %s", loc, err.Message))
	}
	for _, cause := range err.Causes {
		out = append(out, collect(cause)...)
	}
	if len(out) == 0 {
		out = append(out, errors.New(err.Error()))
	}
	return out
}

// normalize turns the map[any]any values some YAML decoders produce into
// map[string]any so the document can be re-encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalize(val)
		}
		return s
	default:
		return v
	}
}
