package main

import (
	"context"
	"flag"

	"pos-inventory/internal/config"
	"pos-inventory/internal/repository"
	"pos-inventory/pkg/database"
	"pos-inventory/pkg/logger"

	"github.com/google/uuid"
)

// Resets a user's password from the command line and signs out every session.
//
//	go run ./cmd/reset-password -email admin@example.com -password newsecret
func main() {
	email := flag.String("email", "", "email of the user to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	log := logger.WithModule("reset-password")
	cfg, envFound := config.Load()
	if !envFound {
		log.Warn(".env file not found, relying on system env")
	}
	if *email == "" {
		*email = cfg.SeedAdminEmail
	}
	if len(*password) < 6 {
		log.Fatal("-password must be at least 6 characters")
	}

	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.DebugSQL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(ctx, *email)
	if err != nil {
		log.WithError(err).WithField("email", *email).Fatal("user not found")
	}

	if err := user.SetPassword(*password); err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	if err := userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.WithError(err).Fatal("failed to update password")
	}
	if err := userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		log.WithError(err).Fatal("failed to revoke sessions")
	}

	log.WithField("email", *email).Info("password reset, existing sessions revoked")
}
