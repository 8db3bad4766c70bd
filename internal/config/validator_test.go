package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Path: "environments.dev.baseUrl", Message: "baseUrl is required"}
	if got := err.Error(); got != "environments.dev.baseUrl: baseUrl is required" {
		t.Errorf("Unexpected message %q", got)
	}
}

func validConfig() *Config {
	return &Config{
		Environments: map[string]Environment{
			"dev": {BaseURL: "https://api-dev.example.com"},
		},
		Requests: map[string]Request{
			"getUser": {URL: "/users/{{userId}}", Method: "GET"},
		},
		Suites: map[string]Suite{
			"userFlow": {Requests: []string{"getUser"}},
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		paths  []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "no environments",
			mutate: func(c *Config) { c.Environments = nil },
			paths:  []string{"environments"},
		},
		{
			name:   "missing baseUrl",
			mutate: func(c *Config) { c.Environments["dev"] = Environment{} },
			paths:  []string{"environments.dev.baseUrl"},
		},
		{
			name: "no requests",
			mutate: func(c *Config) {
				c.Requests = nil
				c.Suites = nil
			},
			paths: []string{"requests"},
		},
		{
			name:   "missing url and method",
			mutate: func(c *Config) { c.Requests["getUser"] = Request{} },
			paths:  []string{"requests.getUser.url", "requests.getUser.method"},
		},
		{
			name:   "unknown method",
			mutate: func(c *Config) { c.Requests["getUser"] = Request{URL: "/", Method: "FETCH"} },
			paths:  []string{"requests.getUser.method"},
		},
		{
			name:   "lowercase method accepted",
			mutate: func(c *Config) { c.Requests["getUser"] = Request{URL: "/", Method: "patch"} },
		},
		{
			name: "auth without user",
			mutate: func(c *Config) {
				c.Requests["getUser"] = Request{URL: "/", Method: "GET", Auth: &Auth{Password: "x"}}
			},
			paths: []string{"requests.getUser.auth.user"},
		},
		{
			name: "empty extract path",
			mutate: func(c *Config) {
				c.Requests["getUser"] = Request{URL: "/", Method: "GET", Extract: map[string]string{"id": ""}}
			},
			paths: []string{"requests.getUser.extract.id"},
		},
		{
			name: "broken schema",
			mutate: func(c *Config) {
				c.Requests["getUser"] = Request{URL: "/", Method: "GET", Validate: map[string]any{"type": "nonsense"}}
			},
			paths: []string{"requests.getUser.validate"},
		},
		{
			name: "suite problems",
			mutate: func(c *Config) {
				c.Suites["empty"] = Suite{}
				c.Suites["userFlow"] = Suite{Requests: []string{"getUser", "missing"}}
			},
			paths: []string{"suites.empty.requests", "suites.userFlow.requests[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			errors := ValidateConfig(config)
			if len(errors) != len(tt.paths) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.paths), len(errors), errors)
			}
			for i, path := range tt.paths {
				if errors[i].Path != path {
					t.Errorf("Error %d: expected path %s, got %s", i, path, errors[i].Path)
				}
			}
		})
	}
}

func TestValidateLookups(t *testing.T) {
	config := validConfig()

	if err := ValidateEnvironment(config, "dev"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateEnvironment(config, "prod"); err == nil || !strings.Contains(err.Error(), "prod") {
		t.Errorf("Expected environment not found, got %v", err)
	}
	if err := ValidateRequest(config, "getUser"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateRequest(config, "nope"); err == nil {
		t.Errorf("Expected request not found")
	}
	if err := ValidateSuite(config, "userFlow"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateSuite(config, "nope"); err == nil {
		t.Errorf("Expected suite not found")
	}
}
