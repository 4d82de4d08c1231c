// Package bootstrap brings up the infrastructure shared by every bot:
// logging first, then the database pool and its schema.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	coredatabase "github.com/m3rciful/insightbot/core/database"
	"github.com/m3rciful/insightbot/core/logger"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the real implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Close releases the database pool.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

func (o Options) withDefaults() Options {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	return o
}

// Run initializes the logger, connects to the database, and applies migrations.
// Nothing is left open when it fails.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	opts = opts.withDefaults()
	start := time.Now()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	logger.Component("app").Info("infrastructure ready",
		slog.String("event", "bootstrap.done"),
		slog.Duration("duration", logger.Took(start)),
	)
	return &Result{DB: db}, nil
}
