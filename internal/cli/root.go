// Package cli wires the kos-manager commands.
package cli

import (
	"fmt"

	"kos-manager/internal/config"
	"kos-manager/internal/database"
	"kos-manager/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is what every command needs: config, logger and an open database.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) close() {
	if e.db != nil {
		_ = database.Close(e.db)
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

func setup(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "kos-manager",
		Short: "Boarding-house management service",
		Long: `kos-manager tracks rooms, tenants, rent payments and expenses for a landlord
and serves them over a JSON API.

Configuration is read from config.yaml (or --config) and KOS_* environment
variables; a .env file in the working directory is loaded first.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newReconcileCmd(&configPath),
		newRemindCmd(&configPath),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
