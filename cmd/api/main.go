package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/catalog-backend/internal/api"
	"github.com/baharkarakas/catalog-backend/internal/api/handlers"
	"github.com/baharkarakas/catalog-backend/internal/auth"
	"github.com/baharkarakas/catalog-backend/internal/config"
	"github.com/baharkarakas/catalog-backend/internal/db"
	"github.com/baharkarakas/catalog-backend/internal/logger"
	"github.com/baharkarakas/catalog-backend/internal/metrics"
	"github.com/baharkarakas/catalog-backend/internal/repository"
	"github.com/baharkarakas/catalog-backend/internal/repository/memory"
	"github.com/baharkarakas/catalog-backend/internal/repository/postgres"
	"github.com/baharkarakas/catalog-backend/internal/services"
	"github.com/baharkarakas/catalog-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var creds repository.Credentials
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory credential store; accounts are lost on restart")
		creds = memory.NewCredentials()
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
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
		creds = postgres.NewRepositories(pool).Credentials
	}

	wp := worker.NewPool(cfg.HashWorkers)
	defer wp.Stop()

	hasher, err := auth.NewHasher(cfg.BcryptCost, wp)
	if err != nil {
		log.Error("hasher", "err", err)
		os.Exit(1)
	}
	authSvc := services.NewAuthService(creds, hasher)

	metrics.Init()
	r := api.NewRouter(cfg, handlers.NewAuthHandler(authSvc))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.Store, "bcrypt_cost", hasher.Cost())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
