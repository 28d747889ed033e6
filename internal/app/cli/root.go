package cli

import (
	"context"
	"log/slog"
	"os"

	"auction-house/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auction-house",
	Short: "Auction house back office API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		setupLogging(config.APP_ENV)
	},
	// No subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func setupLogging(env string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
