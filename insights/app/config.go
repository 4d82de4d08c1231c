package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	"github.com/m3rciful/insightbot/core/database"
)

// RedisConfig selects the Redis session backend. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL        string `yaml:"url" envconfig:"REDIS_URL"`
	TTLSeconds int    `yaml:"session_ttl_seconds" envconfig:"REDIS_SESSION_TTL_SECONDS"`
}

// TTL returns the session expiry; zero keeps sessions until cleared.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// ExportConfig controls where workbooks are written before upload.
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"EXPORT_DIR"`
}

// Config is the full configuration of the insights bot.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	Redis    RedisConfig     `yaml:"redis"`
	Export   ExportConfig    `yaml:"export"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path and the environment into a normalized Config.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	c.Redis.URL = strings.TrimSpace(c.Redis.URL)
	if c.Redis.TTLSeconds < 0 {
		return fmt.Errorf("redis.session_ttl_seconds must be >= 0")
	}
	c.Export.Dir = strings.TrimSpace(c.Export.Dir)
	return nil
}
