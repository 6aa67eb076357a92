package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sangkips/notas-backoffice/internal/infrastructure/database"
)

var adminFlags struct {
	email    string
	password string
	name     string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first administrator if it does not exist",
	Long: `create-admin inserts an administrator account. Flags default to
ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME. An existing account with the
same email is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		email := firstNonEmpty(adminFlags.email, cfg.Admin.Email)
		password := firstNonEmpty(adminFlags.password, cfg.Admin.Password)
		name := firstNonEmpty(adminFlags.name, cfg.Admin.Name)
		if email == "" || password == "" {
			return errors.New("admin email and password are required")
		}

		db, err := openDatabase(cfg, log)
		if err != nil {
			return err
		}
		created, err := database.EnsureAdmin(cmd.Context(), db, email, password, name)
		if err != nil {
			return err
		}

		entry := log.WithFields(logrus.Fields{"email": email})
		if created {
			entry.Info("Administrator created")
		} else {
			entry.Info("Administrator already exists")
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "administrator email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "administrator password")
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "display name")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
