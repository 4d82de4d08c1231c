package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	"github.com/m3rciful/insightbot/core/logger"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/insightbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

func newBot(cfg *coreconfig.Config) (*tele.Bot, bool, error) {
	url := cfg.Webhook.PublicWebhookURL()
	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook:                WebhookOptions{Listen: cfg.Webhook.Listen, Port: cfg.Webhook.Port, URL: url},
	})
	_, webhook := poller.(*tele.Webhook)

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(cfg.Telegram.HTTPRetries),
	})
	if err != nil {
		return nil, false, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	attrs := []any{slog.String("event", "mode"), slog.Duration("duration", logger.Took(start))}
	if webhook {
		logger.TG.Info("webhook mode", append(attrs,
			slog.String("mode", "webhook"),
			slog.String("listen", fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)),
			slog.String("public_url", url),
		)...)
	} else {
		logger.TG.Info("polling mode", append(attrs, slog.String("mode", "polling"))...)
	}
	return bot, webhook, nil
}

// RunTelegram composes and runs a Telegram bot until ctx is done.
// Queued outbound sends are flushed before it returns.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	bot, webhook, err := newBot(opts.Config)
	if err != nil {
		return err
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	defer func() {
		dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}()

	cleanup := !opts.DisableWebhookCleanup
	if !webhook && cleanup {
		removeWebhook(bot, "polling")
	}
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, reg)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)
	if webhook && cleanup {
		removeWebhook(bot, "webhook")
	}
	if opts.OnStop != nil {
		if err := opts.OnStop(context.Background(), rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// serve blocks in bot.Start until ctx is done or the poller exits on its own.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func removeWebhook(bot *tele.Bot, mode string) {
	if err := bot.RemoveWebhook(false); err != nil {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("mode", mode),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TG.Info("webhook deleted",
		slog.String("event", "delete_webhook"),
		slog.String("mode", mode),
	)
}
