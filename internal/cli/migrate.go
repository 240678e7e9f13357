package cli

import (
	"fmt"

	"kos-manager/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			if err := database.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			e.log.Info("database schema is up to date")
			return nil
		},
	}
}
