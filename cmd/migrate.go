package cmd

import (
	"fmt"

	"github.com/satheeshds/invoicer/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or list database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{db.MigrateUp, db.MigrateDown, db.MigrateStatus},
	Example: `  # Apply all pending migrations
  invoicer migrate

  # Roll back the latest migration
  invoicer migrate down`,
	RunE: func(cmd *cobra.Command, args []string) error {
		command := db.MigrateUp
		if len(args) == 1 {
			command = args[0]
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := db.Open(cmd.Context(), cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer pool.Close()
		return db.Migrate(cmd.Context(), pool, command)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
