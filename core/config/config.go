package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot credentials and update delivery settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// HTTPRetries bounds retries of transient dial failures against the Bot API.
	HTTPRetries int `yaml:"http_retries" envconfig:"TELEGRAM_HTTP_RETRIES"`
}

// WebhookConfig specifies webhook settings. A non-empty URL selects webhook mode.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Path   string `yaml:"path" envconfig:"WEBHOOK_PATH"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"

	defaultWebhookPath   = "/webhook"
	defaultWebhookListen = "0.0.0.0"
	defaultWebhookPort   = 8000
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": inline button presses
// - "message": text, document and photo messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// LoadInto fills target from an optional YAML file and then the environment.
// A missing file is not an error: the environment alone is a valid source.
// A .env file in the working directory is loaded first when present.
func LoadInto(path string, target any) error {
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, target); err != nil {
				return fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := envconfig.Process("", target); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Load reads the core configuration and normalizes it.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required (BOT_TOKEN)")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		if strings.TrimSpace(cfg.Webhook.URL) != "" {
			rm = RunModeWebhook
		} else {
			rm = RunModeLongpoll
		}
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			cfg.Webhook.Listen = defaultWebhookListen
		}
		if cfg.Webhook.Port == 0 {
			cfg.Webhook.Port = defaultWebhookPort
		}
		if cfg.Webhook.Port < 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Path) == "" {
			cfg.Webhook.Path = defaultWebhookPath
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Telegram.HTTPRetries < 0 {
		return fmt.Errorf("telegram.http_retries must be >= 0")
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}

// PublicWebhookURL joins the configured base URL with the webhook path.
func (w WebhookConfig) PublicWebhookURL() string {
	base := strings.TrimRight(strings.TrimSpace(w.URL), "/")
	path := w.Path
	if path == "" {
		path = defaultWebhookPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasSuffix(base, path) {
		return base
	}
	return base + path
}
