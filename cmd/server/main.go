package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/lotes/internal/config"
	"github.com/JonMunkholm/lotes/internal/core"
	_ "github.com/JonMunkholm/lotes/internal/core/categories" // Register lookup categories
	"github.com/JonMunkholm/lotes/internal/database"
	"github.com/JonMunkholm/lotes/internal/form"
	"github.com/JonMunkholm/lotes/internal/logging"
	"github.com/JonMunkholm/lotes/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"max_concurrent_writes", cfg.Form.MaxConcurrentWrites,
		"session_ttl", cfg.Form.SessionTTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(cfg.Database.URL); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database schema up to date")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// A failed ping is not fatal: option fetches report the outage to the
	// form, which offers a retry.
	if err := pool.Ping(ctx); err != nil {
		slog.Warn("database not reachable yet", "error", err)
	} else if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	service, err := core.NewService(pool, core.ServiceOptions{
		MaxConcurrentWrites: cfg.Form.MaxConcurrentWrites,
		MaxWaitTime:         cfg.Form.MaxWaitTime,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	categories := service.ListCategories()
	slog.Info("categories registered", "count", len(categories))
	for _, c := range categories {
		slog.Debug("category", "key", c.Key, "label", c.Label, "bundled", c.Bundled)
	}

	sessions := form.NewRegistry(web.FormDeps(service, cfg.Form, slog.Default()), cfg.Form.SessionTTL)
	server := web.NewServer(service, sessions, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Form.SweepInterval)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		sessions.CloseAll()

		writes := service.Limiter().Status()
		if writes.Active > 0 {
			slog.Info("waiting for writes to complete", "active", writes.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("writes did not complete in time", "error", err)
			} else {
				slog.Info("all writes completed")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
