package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/vaughan-dsouza/notes/internal/auth"
	"github.com/vaughan-dsouza/notes/internal/config"
	"github.com/vaughan-dsouza/notes/internal/db"
	"github.com/vaughan-dsouza/notes/internal/handlers"
	"github.com/vaughan-dsouza/notes/internal/server"
	"github.com/vaughan-dsouza/notes/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if !cfg.IsProduction() && cfg.SecretKey == config.DevSecretKey {
		logger.Warn("using development SECRET_KEY; tokens can be forged by anyone who reads the source")
	}

	ctx := context.Background()

	dbConn, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("db connect", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn.DB); err != nil {
		logger.Error("db migrate", "error", err)
		os.Exit(1)
	}

	st := store.NewPostgres(dbConn)
	tokens := auth.NewTokenService(cfg.SecretKey)

	h := handlers.NewHandler(handlers.Deps{
		Store:          st,
		Hasher:         auth.NewPasswordHasher(cfg.BcryptCost),
		Tokens:         tokens,
		AccessTokenTTL: cfg.AccessTokenTTL,
		Logger:         logger,
	})

	r := server.NewRouter(h, server.RouterConfig{
		Tokens:     tokens,
		Store:      st,
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	})

	srv := server.New(r, cfg.AppPort, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
