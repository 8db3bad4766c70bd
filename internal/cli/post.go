package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/http"
)

var postCmd = &cobra.Command{
	Use:   "post URL",
	Short: "Make a POST request to the specified URL",
	Long: `Make a POST request to the specified URL.

Payload fields are form-encoded unless the Content-Type is exactly
application/json:

  jax post example.com/users -d name=jax -d role=admin
  jax post example.com/users --json '{"name":"jax"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(cmd, func(c *http.Client, url string) *http.Request { return c.Post(url) }, args[0])
	},
}

func init() {
	addRequestFlags(postCmd)
}
