package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/notes/internal/config"
)

func Connect(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	// Parse DSN → pgx config struct
	pgCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}

	// Fail fast on startup if PG is unreachable
	pgCfg.ConnectTimeout = cfg.DBConnectTimeout

	// Create sql.DB using pgx's stdlib adapter
	sqlDB := stdlib.OpenDB(*pgCfg)

	// Wrap in sqlx for struct scanning
	db := sqlx.NewDb(sqlDB, "pgx")

	// ---- Connection Pool Settings ----
	db.SetMaxOpenConns(cfg.DBMaxOpen)
	db.SetMaxIdleConns(cfg.DBMaxIdle)
	db.SetConnMaxLifetime(cfg.DBMaxLifetime)

	// ---- Connectivity Check ----
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: failed to connect to Postgres: %w", err)
	}

	// ---- Health Check Query ----
	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: health check failed: %w", err)
	}

	return db, nil
}
