package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/insightbot/core/logger"
)

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	if cfg.WaitSeconds > 0 {
		if err := WaitForPostgres(cfg.DSN(), time.Duration(cfg.WaitSeconds)*time.Second); err != nil {
			logger.DB.Error("db not reachable",
				slog.String("event", "db.wait"),
				slog.String("host", cfg.Redacted()),
				slog.String("err", err.Error()),
			)
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("status", "fail"),
			slog.String("host", cfg.Redacted()),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("status", "ok"),
		slog.String("host", cfg.Redacted()),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	return db, nil
}

// WaitForPostgres pings the DB until it answers or timeout is reached.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		}
		time.Sleep(2 * time.Second)
	}
}
