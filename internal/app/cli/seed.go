package cli

import (
	"log/slog"

	"auction-house/config"
	"auction-house/database"

	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo auctions, lots and accounts into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(config.DB_DRIVER, config.DB_URL)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db, seedPassword); err != nil {
			slog.Error("Seed failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "fotherbys2024", "password for every seeded account")
	rootCmd.AddCommand(seedCmd)
}
