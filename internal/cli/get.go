package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/http"
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Make a GET request to the specified URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(cmd, func(c *http.Client, url string) *http.Request { return c.Get(url) }, args[0])
	},
}

func init() {
	addRequestFlags(getCmd)
}
