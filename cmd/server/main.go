package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/reportstack/consolidator/internal/config"
	"github.com/reportstack/consolidator/internal/core"
	"github.com/reportstack/consolidator/internal/logging"
	"github.com/reportstack/consolidator/internal/session"
	"github.com/reportstack/consolidator/internal/store"
	"github.com/reportstack/consolidator/internal/web"
)

func main() {
	// Load .env if present (Overload overwrites existing env vars).
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
		"store_driver", cfg.Store.Driver,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	var st core.Store
	switch cfg.Store.Driver {
	case "postgres":
		pg, err := store.OpenPostgres(ctx, cfg.Store.DSN, cfg.Store.RetryAfter)
		if err != nil {
			slog.Error("failed to connect to postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
	default:
		sq, err := store.OpenSQLite(cfg.Store.DSN, cfg.Store.RetryAfter)
		if err != nil {
			slog.Error("failed to open sqlite store", "error", err, "path", cfg.Store.DSN)
			os.Exit(1)
		}
		defer sq.Close()
		st = sq
	}
	slog.Info("store ready", "driver", cfg.Store.Driver)

	service := core.NewService(st)
	sessions := session.NewManager(st, cfg.Schema.DefaultFields, cfg.Session.TTL, cfg.Session.MinPasswordLength)
	server := web.NewServer(service, sessions, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
