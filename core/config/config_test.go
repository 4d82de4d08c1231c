package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := Config{Telegram: TelegramConfig{Token: "t"}}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode: got %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookDefaults(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{Token: "t"},
		Webhook:  WebhookConfig{URL: "https://example.com"},
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeWebhook {
		t.Fatalf("run mode: got %q", cfg.Telegram.RunMode)
	}
	if cfg.Webhook.Listen != "0.0.0.0" || cfg.Webhook.Port != 8000 || cfg.Webhook.Path != "/webhook" {
		t.Fatalf("defaults not applied: %+v", cfg.Webhook)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := map[string]Config{
		"no token":        {},
		"webhook no url":  {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
		"bad mode":        {Telegram: TelegramConfig{Token: "t", RunMode: "push"}},
		"negative retry":  {Telegram: TelegramConfig{Token: "t", HTTPRetries: -1}},
		"bad rate update": {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline"}}},
	}
	for name, cfg := range cases {
		cfg := cfg
		if err := Normalize(&cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if err := Normalize(nil); err == nil {
		t.Error("nil config: expected error")
	}
}

func TestNormalizeLowercasesExclusions(t *testing.T) {
	cfg := Config{
		Telegram:  TelegramConfig{Token: "t", RunMode: "polling"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback "}},
	}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("polling alias not mapped: %q", cfg.Telegram.RunMode)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("got %q", cfg.RateLimit.ExcludeUpdates[0])
	}
}

func TestPublicWebhookURL(t *testing.T) {
	cases := []struct {
		cfg  WebhookConfig
		want string
	}{
		{WebhookConfig{URL: "https://example.com"}, "https://example.com/webhook"},
		{WebhookConfig{URL: "https://example.com/"}, "https://example.com/webhook"},
		{WebhookConfig{URL: "https://example.com/webhook"}, "https://example.com/webhook"},
		{WebhookConfig{URL: "https://example.com", Path: "hook"}, "https://example.com/hook"},
	}
	for _, tc := range cases {
		if got := tc.cfg.PublicWebhookURL(); got != tc.want {
			t.Errorf("%+v: got %q want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "telegram:\n  token: from-file\n  admin_id: 7\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("env must override file, got %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 7 || cfg.Logging.Level != "debug" {
		t.Fatalf("file values lost: %+v", cfg)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.Token != "env-only" {
		t.Fatalf("got %q", cfg.Telegram.Token)
	}
}
