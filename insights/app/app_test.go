package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	"github.com/m3rciful/insightbot/core/telegram/state"
	"github.com/m3rciful/insightbot/insights/bot"
	"github.com/m3rciful/insightbot/insights/export"
	"github.com/m3rciful/insightbot/insights/flow"

	tele "gopkg.in/telebot.v4"
)

func validConfig() *Config {
	return &Config{
		Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}},
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("REDIS_URL", " redis://localhost:6379/0 ")
	t.Setenv("REDIS_SESSION_TTL_SECONDS", "600")
	t.Setenv("EXPORT_DIR", "/tmp/exports")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.Telegram.Token)
	require.Equal(t, coreconfig.RunModeWebhook, cfg.Telegram.RunMode)
	require.Equal(t, "https://bot.example.com/webhook", cfg.Webhook.PublicWebhookURL())
	require.Equal(t, 8000, cfg.Webhook.Port)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, "5432", cfg.Database.Port)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.Equal(t, 10*time.Minute, cfg.Redis.TTL())
	require.Equal(t, "/tmp/exports", cfg.Export.Dir)
	require.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestNormalizeRejectsMissingDatabase(t *testing.T) {
	cfg := validConfig()
	require.Error(t, cfg.Normalize())

	cfg.Database.URL = "postgres://u:p@localhost/db"
	require.NoError(t, cfg.Normalize())
	require.Equal(t, coreconfig.RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeRejectsNegativeTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = "localhost"
	cfg.Redis.TTLSeconds = -1
	require.Error(t, cfg.Normalize())
}

func TestNilConfigHasNoCore(t *testing.T) {
	var cfg *Config
	require.Nil(t, cfg.CoreConfig())
}

func TestTelegramRunOptionsWiresRoutes(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AdminID = 42
	engine := flow.NewEngine(nil, export.New(t.TempDir()), state.NewMemoryStore[flow.Session]())
	a := &App{cfg: cfg, adapter: bot.New(engine)}

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.Same(t, &cfg.Config, opts.Config)
	require.Equal(t, 4, opts.DispatcherOptions.Workers)
	require.Zero(t, opts.DispatcherOptions.MaxRetries)

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		require.NotNil(t, r.Handler)
		endpoints[r.Endpoint] = true
	}
	for _, ep := range []any{"/start", "/help", "/cancel", "/stats", tele.OnCallback, tele.OnText, tele.OnDocument, tele.OnPhoto} {
		require.True(t, endpoints[ep], "missing route %v", ep)
	}

	names := make([]string, 0, len(opts.Middlewares))
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	require.Equal(t, []string{"recover", "logger", "metrics"}, names)

	for _, act := range flow.Actions {
		_, ok := opts.Registry.GetCallback(string(act))
		require.True(t, ok, "callback %s not registered", act)
	}
}

func TestTelegramRunOptionsRequiresAdapter(t *testing.T) {
	_, err := (&App{cfg: validConfig()}).TelegramRunOptions()
	require.Error(t, err)
}

func TestCloseWithoutResources(t *testing.T) {
	a := &App{cfg: validConfig()}
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
