package database

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/insightbot/core/logger"
)

// RunMigrations applies all up migrations from cfg.MigrationsDir.
func RunMigrations(cfg Config) error {
	dsn := cfg.DSN()
	if err := WaitForPostgres(dsn, 30*time.Second); err != nil {
		logger.MIG.Error("db not ready",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := listMigrationFiles(dir)
	logger.MIG.Debug("migrations resolved",
		slog.String("event", "resolve"),
		slog.String("path", dir),
		slog.Int("count", len(files)),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("count", countApplied(files, uint64(fromVer), uint64(toVer))),
		slog.Duration("duration", took),
	)
	return nil
}

func listMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

func countApplied(files []string, from, to uint64) int {
	n := 0
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			n++
		}
	}
	return n
}
