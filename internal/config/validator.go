package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wesleyorama2/jax/internal/schema"
)

var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration. Errors are reported in a
// stable order.
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if len(config.Environments) == 0 {
		errors = append(errors, ValidationError{
			Path:    "environments",
			Message: "at least one environment is required",
		})
	}

	for _, name := range sortedKeys(config.Environments) {
		if config.Environments[name].BaseURL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("environments.%s.baseUrl", name),
				Message: "baseUrl is required",
			})
		}
	}

	if len(config.Requests) == 0 {
		errors = append(errors, ValidationError{
			Path:    "requests",
			Message: "at least one request is required",
		})
	}

	for _, name := range sortedKeys(config.Requests) {
		errors = append(errors, validateRequest(name, config.Requests[name])...)
	}

	for _, name := range sortedKeys(config.Suites) {
		suite := config.Suites[name]
		if len(suite.Requests) == 0 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("suites.%s.requests", name),
				Message: "at least one request is required",
			})
		}

		for i, reqName := range suite.Requests {
			if _, ok := config.Requests[reqName]; !ok {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("suites.%s.requests[%d]", name, i),
					Message: fmt.Sprintf("request not found: %s", reqName),
				})
			}
		}
	}

	return errors
}

func validateRequest(name string, req Request) []ValidationError {
	var errors []ValidationError
	at := func(field string) string { return fmt.Sprintf("requests.%s.%s", name, field) }

	if req.URL == "" {
		errors = append(errors, ValidationError{Path: at("url"), Message: "url is required"})
	}

	if req.Method == "" {
		errors = append(errors, ValidationError{Path: at("method"), Message: "method is required"})
	} else if !knownMethods[strings.ToUpper(req.Method)] {
		errors = append(errors, ValidationError{
			Path:    at("method"),
			Message: fmt.Sprintf("invalid method: %s", req.Method),
		})
	}

	if req.Auth != nil && req.Auth.User == "" {
		errors = append(errors, ValidationError{Path: at("auth.user"), Message: "user is required"})
	}

	for _, varName := range sortedKeys(req.Extract) {
		if req.Extract[varName] == "" {
			errors = append(errors, ValidationError{
				Path:    at("extract." + varName),
				Message: "extract path cannot be empty",
			})
		}
	}

	if len(req.Validate) > 0 {
		if _, err := schema.CompileValue(req.Validate); err != nil {
			errors = append(errors, ValidationError{Path: at("validate"), Message: err.Error()})
		}
	}

	return errors
}

// ValidateEnvironment validates that an environment exists
func ValidateEnvironment(config *Config, envName string) error {
	if _, ok := config.Environments[envName]; !ok {
		return fmt.Errorf("environment not found: %s", envName)
	}
	return nil
}

// ValidateRequest validates that a request exists
func ValidateRequest(config *Config, reqName string) error {
	if _, ok := config.Requests[reqName]; !ok {
		return fmt.Errorf("request not found: %s", reqName)
	}
	return nil
}

// ValidateSuite validates that a suite exists
func ValidateSuite(config *Config, suiteName string) error {
	if _, ok := config.Suites[suiteName]; !ok {
		return fmt.Errorf("suite not found: %s", suiteName)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
