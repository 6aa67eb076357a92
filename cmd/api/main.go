package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sangkips/notas-backoffice/internal/config"
	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
	"github.com/sangkips/notas-backoffice/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "notas-api",
	Short: "Back-office API for invoices and POS reconciliation",
	Long: `notas-api serves the back-office HTTP API used to register invoices
(notas fiscais), record card-terminal sales and close customer payouts.

Running it without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// bootstrap loads the configuration and builds the process logger
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.WithFields(logrus.Fields{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	}).Debug("configuration loaded")
	return cfg, log, nil
}

// openDatabase connects and brings the schema up to date
func openDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(&cfg.Database, log, cfg.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
