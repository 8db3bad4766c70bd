// Package config loads and validates jax collection files.
//
// A collection is a JSON or YAML file that defines:
//   - Environments: base URL, default headers and variables per target
//   - Requests: builder settings (method, URL, headers, query fragments,
//     payload fields, content type, auth, cors, nocache) plus values to
//     extract and a JSON Schema to validate the response against
//   - Suites: ordered lists of requests sharing variables
//
// Basic Usage:
//
//	cfg, err := config.LoadConfig("collection.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env := cfg.Environments["staging"]
//	req := cfg.Requests["getUser"].Build(client, env, env.Vars)
//	resp, err := req.Do()
//
// Variable Substitution:
//
// Variables are referenced as {{name}} in URLs, header values, query
// fragments, auth credentials and string payload values.
//
// Configuration Validation:
//
//	errors := config.ValidateConfig(cfg)
//	for _, err := range errors {
//	    log.Printf("Validation error: %s", err)
//	}
package config
