package cli

import (
	"log/slog"

	"auction-house/config"
	"auction-house/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(config.DB_DRIVER, config.DB_URL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			return err
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("Migration failed", "error", err)
			return err
		}
		slog.Info("Migration completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
