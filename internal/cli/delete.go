// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jax/http"
)

var deleteCmd = &cobra.Command{
	Use:     "delete URL",
	Aliases: []string{"del"},
	Short:   "Make a DELETE request to the specified URL",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(cmd, func(c *http.Client, url string) *http.Request { return c.Del(url) }, args[0])
	},
}

func init() {
	addRequestFlags(deleteCmd)
}
