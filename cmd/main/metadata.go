package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:         "refresh <url>",
	Short:       "Resolve title and favicon for a URL again, ignoring the cache",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipTreeAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		meta := app.Service.Refresh(cmd.Context(), args[0])
		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(meta)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "title:   %s\nfavicon: %s\n", meta.Title, meta.Favicon)
		return nil
	},
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Resolve every uncached bookmark into the metadata cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := app.Service.Warm(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd, warmCmd)
}
