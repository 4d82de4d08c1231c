package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds PostgreSQL connection settings for the hosted store.
// URL, when set, takes precedence over the discrete fields.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
	// WaitSeconds keeps retrying the first ping while a cold database starts; 0 disables.
	WaitSeconds int `yaml:"wait_seconds" envconfig:"DB_WAIT_SECONDS"`
}

// Normalize fills defaults and rejects configs without a reachable endpoint.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("database endpoint is required (DATABASE_URL or DB_HOST)")
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "require"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 5
	}
	if c.WaitSeconds < 0 {
		return fmt.Errorf("database wait_seconds must be >= 0")
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
	return nil
}

// DSN returns a postgres:// URL usable by both lib/pq and golang-migrate.
func (c Config) DSN() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Redacted returns the host portion for logs without credentials.
func (c Config) Redacted() string {
	u, err := url.Parse(c.DSN())
	if err != nil {
		return c.Host
	}
	return u.Host
}
