package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/http"
	"github.com/wesleyorama2/jax/internal/output"
	"github.com/wesleyorama2/jax/logging"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "jax",
	Short:   "A minimal chainable HTTP client for the terminal",
	Version: version,
	Long: `Jax builds HTTP requests fluently: set headers, query fragments and
payload fields, then send. Single requests go through the get, post, put
and delete commands; collections of requests run from a JSON or YAML file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// session carries what every command needs to send and print requests.
type session struct {
	client    *http.Client
	formatter output.FormatProvider
	out       io.Writer
	logger    logging.Logger
}

// newSession reads the persistent flags.
func newSession(cmd *cobra.Command, options ...http.ClientOption) (*session, error) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	verbose, _ := cmd.Flags().GetBool("verbose")
	levelName, _ := cmd.Flags().GetString("log-level")
	formatName, _ := cmd.Flags().GetString("output")

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !ok || !output.ColorEnabled(f) {
		noColor = true
	}

	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), level, "jax")
	options = append([]http.ClientOption{
		http.WithHeader("User-Agent", "jax/"+version),
		http.WithLogger(logger),
	}, options...)

	return &session{
		client:    http.NewClient(options...),
		formatter: output.GetFormatter(format, verbose, noColor),
		out:       out,
		logger:    logger,
	}, nil
}

// exchange sends req and prints both sides. The returned error is set only
// when no response was produced; HTTP error statuses are reported on the
// response.
func (s *session) exchange(req *http.Request) (*http.Response, error) {
	resp, err := req.Do()

	fmt.Fprint(s.out, s.formatter.FormatRequest(req))
	if err != nil {
		fmt.Fprint(s.out, s.formatter.FormatError(err))
		return nil, err
	}
	fmt.Fprint(s.out, s.formatter.FormatResponse(resp))
	return resp, nil
}

func init() {
	RootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().String("log-level", "warn", "Log level for diagnostics on stderr (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(postCmd)
	RootCmd.AddCommand(putCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(runCmd)
}
