package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/notas-backoffice/internal/config"
	"github.com/sangkips/notas-backoffice/internal/domain/entity"
	"github.com/sangkips/notas-backoffice/pkg/utils"
)

// NewPostgresDB creates a new PostgreSQL database connection. SQL is logged
// through log; debug turns on statement tracing.
func NewPostgresDB(cfg *config.DatabaseConfig, log *logrus.Logger, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.WithFields(logrus.Fields{"host": cfg.Host, "database": cfg.Name}).
		Info("connected to PostgreSQL")
	return db, nil
}

// Ping checks the connection, used by the health endpoint
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate runs GORM auto-migration for all entities. Parents are listed
// before children so foreign keys can be created.
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Operators
		&entity.SystemUser{},
		&entity.PasswordResetToken{},

		// Notas fiscais
		&entity.Customer{},
		&entity.Company{},
		&entity.Invoice{},

		// POS
		&entity.PosCompany{},
		&entity.PosTerminal{},
		&entity.CustomerRate{},
		&entity.PosSale{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// EnsureAdmin creates an admin operator with the given credentials unless one
// with that email already exists. It reports whether a user was created.
func EnsureAdmin(ctx context.Context, db *gorm.DB, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	var existing entity.SystemUser
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}

	admin := entity.SystemUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, TranslateError(err)
	}
	return true, nil
}
