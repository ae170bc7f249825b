// Command admin_seed creates the first administrator account from
// ADMIN_NAME, ADMIN_EMAIL, ADMIN_PHONE and ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"os"

	"eventflex/internal/config"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, config.IsProduction())
	log := logger.Log

	adminName := config.GetEnv("ADMIN_NAME", "Administrator")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")

	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}
	if !validation.StrongPassword(adminPassword) {
		log.Fatalf("ADMIN_PASSWORD must be %d-%d characters and contain a special character",
			validation.MinPasswordLength, validation.MaxPasswordLength)
	}

	db, err := repositories.InitDB(cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.WithError(err).Warn("failed to close PostgreSQL connection")
			}
		}
	}()

	ctx := context.Background()
	users := repositories.NewUserRepository(db)

	existing, err := users.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		log.WithField("role", existing.Role).Info("user with this email already exists")
		return
	case !errors.Is(err, repositories.ErrNotFound):
		log.WithError(err).Fatal("failed to look up admin user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}

	admin := &models.User{
		Name:         adminName,
		Email:        adminEmail,
		Password:     string(hashedPassword),
		Phone:        adminPhone,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
		KYCStatus:    models.KYCApproved,
		TokenVersion: 1,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.WithError(err).Fatal("failed to create admin user")
	}

	log.WithField("user_id", admin.ID).Info("admin account created")
}
