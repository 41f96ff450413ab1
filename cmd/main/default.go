package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	defaultInto []int
	defaultRoot bool
)

var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Manage the folder the popup opens with",
}

var defaultShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the saved default path",
	Annotations: map[string]string{skipTreeAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := app.Service.DefaultPath(cmd.Context())
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no default folder")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ids)
		return nil
	},
}

var defaultSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Pin the folder reached with --into as the default",
	Long: `Pin the folder reached with --into as the default.

Example:
  bookmarks default set --root --into 0,3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := walk(cmd, defaultRoot, defaultInto); err != nil {
			return err
		}
		if err := app.Service.PinCurrent(cmd.Context()); err != nil {
			return err
		}
		log.Infof("📌 Default folder saved: %v", app.Service.DefaultPath(cmd.Context()))
		return nil
	},
}

var defaultClearCmd = &cobra.Command{
	Use:         "clear",
	Short:       "Forget the default folder",
	Annotations: map[string]string{skipTreeAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Service.Unpin(cmd.Context()); err != nil {
			return err
		}
		log.Info("🗑️ Default folder cleared")
		return nil
	},
}

func init() {
	defaultSetCmd.Flags().IntSliceVar(&defaultInto, "into", nil, "item indices to enter before pinning")
	defaultSetCmd.Flags().BoolVar(&defaultRoot, "root", false, "start from the root instead of the default folder")

	defaultCmd.AddCommand(defaultShowCmd, defaultSetCmd, defaultClearCmd)
	rootCmd.AddCommand(defaultCmd)
}
