package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/accounts-backend/internal/api"
	"github.com/baharkarakas/accounts-backend/internal/api/handlers"
	"github.com/baharkarakas/accounts-backend/internal/auth"
	"github.com/baharkarakas/accounts-backend/internal/config"
	"github.com/baharkarakas/accounts-backend/internal/db"
	"github.com/baharkarakas/accounts-backend/internal/logger"
	"github.com/baharkarakas/accounts-backend/internal/metrics"
	"github.com/baharkarakas/accounts-backend/internal/middleware"
	"github.com/baharkarakas/accounts-backend/internal/repository/postgres"
	"github.com/baharkarakas/accounts-backend/internal/services"
	"github.com/baharkarakas/accounts-backend/internal/storage"
	"github.com/baharkarakas/accounts-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn("using the development signing key; set JWT_SECRET for anything real")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Error("upload dir", "err", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	accountSvc := services.NewAccountService(repos.Users)
	adminSvc := services.NewAdminService(repos.Users, repos.AuditLogs, wp)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		Gate:      middleware.NewGate(tm, repos.Users),
		Auth:      handlers.NewAuthHandler(accountSvc, tm, blobs, cfg.TokenTTL),
		Admin:     handlers.NewAdminHandler(adminSvc),
		UploadDir: blobs.Dir(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
