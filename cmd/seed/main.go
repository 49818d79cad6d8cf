// Command seed inserts a development admin/moderator pair so the admin panel
// is reachable on a fresh database.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/baharkarakas/accounts-backend/internal/auth"
	"github.com/baharkarakas/accounts-backend/internal/config"
	"github.com/baharkarakas/accounts-backend/internal/db"
	"github.com/baharkarakas/accounts-backend/internal/logger"
	"github.com/baharkarakas/accounts-backend/internal/models"
	repo "github.com/baharkarakas/accounts-backend/internal/repository"
	"github.com/baharkarakas/accounts-backend/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("migrations", "err", err)
		os.Exit(1)
	}

	users := postgres.NewRepositories(pool).Users
	seed := []struct {
		name  string
		email string
		role  models.Role
	}{
		{"Admin User", "admin@example.com", models.RoleAdmin},
		{"Moderator User", "moderator@example.com", models.RoleModerator},
		{"Demo User", "user@example.com", models.RoleUser},
	}

	for _, s := range seed {
		hash, err := auth.HashPassword("password")
		if err != nil {
			log.Error("hash", "err", err)
			os.Exit(1)
		}
		_, err = users.Create(ctx, models.User{
			Name:         s.name,
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
		})
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			log.Info("already exists", "email", s.email)
		case err != nil:
			log.Error("create", "email", s.email, "err", err)
			os.Exit(1)
		default:
			log.Info("created", "email", s.email, "role", s.role, "password", "password")
		}
	}
}
