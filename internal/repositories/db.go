// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"eventflex/internal/config"
	"eventflex/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// translate maps driver-level errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// InitDB opens the Postgres connection, configures the pool and migrates the schema.
func InitDB(cfg config.PostgresConfig) (*gorm.DB, error) {
	// Configure GORM logger to ignore "record not found" errors
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn, // Only log warnings and errors
			IgnoreRecordNotFoundError: true,        // Ignore "record not found"
			Colorful:                  !config.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table owned by the relational store.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.Event{},
		&models.Pool{},
		&models.PoolInvitation{},
		&models.Escrow{},
		&models.Payment{},
		&models.Document{},
		&models.KYCVerification{},
		&models.Notification{},
		&models.Dispute{},
	)
}

// Ping checks the database connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transactor runs fn inside a database transaction. Repositories join it via WithTx.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
