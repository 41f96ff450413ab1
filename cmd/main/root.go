package main

import (
	"context"
	"os"

	"bookmarks/popup/internal/config"
	"bookmarks/popup/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
	app        *container.Container
)

var rootCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Browse bookmarks the way the popup does",
	Long: `bookmarks reads a browser bookmarks file and shows folders the way the
popup does: it reopens the pinned default folder, resolves page titles and
favicons for bookmarks and caches them in the configured store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			log.SetLevel(level)
		}
		log.Debug("Configuration loaded successfully")

		app, err = container.New(cmd.Context(), cfg, newBrowserOpener())
		if err != nil {
			return err
		}
		if !needsTree(cmd) {
			return nil
		}
		return app.Service.Start(cmd.Context())
	},
}

// skipTreeAnnotation marks commands that work without the bookmark tree.
const skipTreeAnnotation = "skip-tree"

func needsTree(cmd *cobra.Command) bool {
	_, skip := cmd.Annotations[skipTreeAnnotation]
	return !skip
}

// Execute runs the root command
func Execute() {
	log.SetOutput(os.Stderr)
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// run executes one command and closes the container whether it failed or not.
func run(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		app.Close()
		app = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
}
