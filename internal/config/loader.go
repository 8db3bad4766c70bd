package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/jax/http"
)

// Config is a collection file: named environments, requests and suites.
type Config struct {
	Environments map[string]Environment `json:"environments" yaml:"environments"`
	Requests     map[string]Request     `json:"requests" yaml:"requests"`
	Suites       map[string]Suite       `json:"suites,omitempty" yaml:"suites,omitempty"`
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL string            `json:"baseUrl" yaml:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Auth holds basic auth credentials.
type Auth struct {
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// Request describes one request in builder terms. Query entries are raw
// fragments such as "page=2"; Data fields form the payload.
type Request struct {
	URL      string            `json:"url" yaml:"url"`
	Method   string            `json:"method" yaml:"method"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query    []string          `json:"query,omitempty" yaml:"query,omitempty"`
	Data     map[string]any    `json:"data,omitempty" yaml:"data,omitempty"`
	Type     string            `json:"type,omitempty" yaml:"type,omitempty"`
	Accept   string            `json:"accept,omitempty" yaml:"accept,omitempty"`
	Auth     *Auth             `json:"auth,omitempty" yaml:"auth,omitempty"`
	CORS     bool              `json:"cors,omitempty" yaml:"cors,omitempty"`
	NoCache  bool              `json:"nocache,omitempty" yaml:"nocache,omitempty"`
	Extract  map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
	Validate map[string]any    `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// Suite represents a suite of requests
type Suite struct {
	Requests []string          `json:"requests" yaml:"requests"`
	Vars     map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// LoadConfig loads a collection file. Files ending in .yaml or .yml are read
// as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Build turns the request description into a configured builder on client.
// Variables are substituted into the URL, header values, query fragments and
// string data values; relative URLs are resolved against env's base URL.
func (r Request) Build(client *http.Client, env Environment, vars map[string]string) *http.Request {
	target := ResolveURL(env.BaseURL, ProcessEnvironment(r.URL, vars))
	req := client.New(strings.ToUpper(r.Method), target)

	req.Headers(ProcessEnvironmentInMap(env.Headers, vars))
	req.Headers(ProcessEnvironmentInMap(r.Headers, vars))
	if r.Type != "" {
		req.Type(r.Type)
	}
	if r.Accept != "" {
		req.Accept(r.Accept)
	}
	if r.Auth != nil {
		req.Auth(ProcessEnvironment(r.Auth.User, vars), ProcessEnvironment(r.Auth.Password, vars))
	}
	if r.CORS {
		req.CORS()
	}
	if r.NoCache {
		req.NoCache()
	}

	for _, q := range r.Query {
		req.Query(ProcessEnvironment(q, vars))
	}

	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := r.Data[k]
		if s, ok := v.(string); ok {
			v = ProcessEnvironment(s, vars)
		}
		req.Data(k, v)
	}

	return req
}

// ResolveURL joins a relative path onto base. Absolute URLs and an empty
// base leave path untouched; an empty path yields base.
func ResolveURL(base, path string) string {
	if path == "" {
		return base
	}
	if base == "" || isAbsoluteURL(path) {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func isAbsoluteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ProcessEnvironment processes environment variables in a string
func ProcessEnvironment(input string, env map[string]string) string {
	result := input

	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	return result
}

// ProcessEnvironmentInMap processes environment variables in a map
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string)

	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}

	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string)

	for key, value := range base {
		result[key] = value
	}

	for key, value := range override {
		result[key] = value
	}

	return result
}
