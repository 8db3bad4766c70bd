package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/internal/config"
	"github.com/wesleyorama2/jax/internal/extract"
	"github.com/wesleyorama2/jax/internal/output"
	"github.com/wesleyorama2/jax/internal/schema"
	"github.com/wesleyorama2/jax/internal/stats"
	"github.com/wesleyorama2/jax/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run requests or suites from a collection file",
	Long: `Run a named request or suite from a JSON or YAML collection file.

Values extracted from one response ({"extract": {"token": "$.token"}}) are
available to later requests in the suite as {{token}}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		environment, _ := cmd.Flags().GetString("environment")
		request, _ := cmd.Flags().GetString("request")
		suite, _ := cmd.Flags().GetString("suite")

		if configFile == "" {
			return fmt.Errorf("config file is required")
		}
		if environment == "" {
			return fmt.Errorf("environment is required")
		}
		if (request == "") == (suite == "") {
			return fmt.Errorf("exactly one of --request or --suite is required")
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		if errs := config.ValidateConfig(cfg); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = "  - " + e.Error()
			}
			return fmt.Errorf("configuration validation errors:\n%s", strings.Join(msgs, "\n"))
		}
		if err := config.ValidateEnvironment(cfg, environment); err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		r := newRunner(s, cfg, environment)

		if request != "" {
			if err := config.ValidateRequest(cfg, request); err != nil {
				return err
			}
			r.runRequest(request)
		} else {
			if err := config.ValidateSuite(cfg, suite); err != nil {
				return err
			}
			r.runSuite(suite)
		}

		return r.finish()
	},
}

// runner executes collection requests in order, carrying variables between
// them and recording each outcome.
type runner struct {
	*session
	cfg      *config.Config
	env      config.Environment
	vars     map[string]string
	recorder *stats.Recorder
	noColor  bool
}

func newRunner(s *session, cfg *config.Config, environment string) *runner {
	env := cfg.Environments[environment]
	noColor := true
	if f, ok := s.formatter.(*output.Formatter); ok {
		noColor = f.NoColor
	}
	return &runner{
		session:  s,
		cfg:      cfg,
		env:      env,
		vars:     config.MergeEnvironments(env.Vars, nil),
		recorder: stats.NewRecorder(),
		noColor:  noColor,
	}
}

// runSuite merges the suite's variables and runs its requests in order.
// Later requests run even when earlier ones fail.
func (r *runner) runSuite(name string) {
	suite := r.cfg.Suites[name]
	for key, value := range suite.Vars {
		r.vars[key] = config.ProcessEnvironment(value, r.vars)
	}

	for _, requestName := range suite.Requests {
		r.note(fmt.Sprintf("\n=== Executing request: %s ===\n\n", requestName))
		r.runRequest(requestName)
	}
}

// runRequest sends one named request and reports whether it succeeded: a
// response arrived, its status was not an error, and every extraction and
// schema check passed.
func (r *runner) runRequest(name string) bool {
	reqConfig := r.cfg.Requests[name]
	logger := r.logger.With(logging.F("request", name))

	req := reqConfig.Build(r.client, r.env, r.vars)
	start := time.Now()
	resp, err := r.exchange(req)
	elapsed := time.Since(start)

	ok := err == nil && resp.Error == nil
	if err == nil {
		if len(reqConfig.Extract) > 0 && !r.extract(logger, resp.Text, reqConfig.Extract) {
			ok = false
		}
		if len(reqConfig.Validate) > 0 && !r.validate(logger, resp.Text, reqConfig.Validate) {
			ok = false
		}
	}

	r.recorder.Record(name, elapsed, ok)
	return ok
}

func (r *runner) extract(logger logging.Logger, body string, paths map[string]string) bool {
	values, err := extract.Values(body, paths)
	for key, value := range values {
		r.vars[key] = value
		logger.Debug("extracted variable", logging.F("name", key), logging.F("value", value))
	}
	if err != nil {
		r.note(fmt.Sprintf("%s Variable extraction failed: %v\n", output.WarningIcon(r.noColor), err))
		return false
	}
	return true
}

func (r *runner) validate(logger logging.Logger, body string, doc map[string]any) bool {
	s, err := schema.CompileValue(doc)
	if err == nil {
		err = s.Validate(body)
	}
	if err != nil {
		logger.Info("schema validation failed", logging.F("error", err))
		r.note(fmt.Sprintf("%s Schema validation failed: %v\n", output.ErrorIcon(r.noColor), err))
		return false
	}
	r.note(fmt.Sprintf("%s Schema validation passed\n", output.SuccessIcon(r.noColor)))
	return true
}

// note prints progress lines in text mode only, so JSON and YAML output
// stays machine readable.
func (r *runner) note(line string) {
	if _, ok := r.formatter.(*output.Formatter); ok {
		fmt.Fprint(r.out, line)
	}
}

// finish prints the run summary and fails when any request failed.
func (r *runner) finish() error {
	summary := r.recorder.Summary()
	r.note("\n")
	fmt.Fprint(r.out, r.formatter.FormatSummary(summary))
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total)
	}
	return nil
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "Collection file, JSON or YAML (required)")
	runCmd.Flags().StringP("environment", "e", "", "Environment to use (required)")
	runCmd.Flags().StringP("request", "r", "", "Request to run")
	runCmd.Flags().StringP("suite", "s", "", "Suite to run")
}
