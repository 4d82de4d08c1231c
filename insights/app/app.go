package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/m3rciful/insightbot/core/bootstrap"
	"github.com/m3rciful/insightbot/core/logger"
	tg "github.com/m3rciful/insightbot/core/telegram"
	"github.com/m3rciful/insightbot/core/telegram/router"
	tgsender "github.com/m3rciful/insightbot/core/telegram/sender"
	"github.com/m3rciful/insightbot/core/telegram/state"
	"github.com/m3rciful/insightbot/insights/bot"
	"github.com/m3rciful/insightbot/insights/export"
	"github.com/m3rciful/insightbot/insights/flow"
	"github.com/m3rciful/insightbot/insights/store"
)

// App owns the infrastructure of a running insights bot.
type App struct {
	cfg     *Config
	infra   *bootstrap.Result
	adapter *bot.Adapter
	closers []io.Closer
}

// New initializes logging, the database, the session store and the conversation engine.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, infra: res}
	sessions, err := a.sessionStore(context.Background())
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	engine := flow.NewEngine(store.NewPostgres(res.DB), export.New(cfg.Export.Dir), sessions)
	a.adapter = bot.New(engine)
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (state.Store[flow.Session], error) {
	if a.cfg.Redis.URL == "" {
		logger.Info(ctx, "app", "sessions.backend", slog.String("backend", "memory"))
		return state.NewMemoryStore[flow.Session](), nil
	}
	rs, err := state.NewRedisStore[flow.Session](ctx, state.RedisOptions{
		URL: a.cfg.Redis.URL,
		TTL: a.cfg.Redis.TTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: session store: %w", err)
	}
	a.closers = append(a.closers, rs)
	logger.Info(ctx, "app", "sessions.backend", slog.String("backend", "redis"))
	return rs, nil
}

// TelegramRunOptions builds the registry, middleware chain and routes.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.adapter == nil {
		return tg.RunOptions{}, fmt.Errorf("app: not initialized")
	}
	reg := tg.NewRegistry()
	if err := a.adapter.Register(reg); err != nil {
		return tg.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.adapter.OnAdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: a.adapter.UnknownCallback(),
	}))
	routes = append(routes, router.MessageRoutes(a.adapter, a.adapter)...)

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, a.adapter.OnRateLimited),
		Routes:      routes,
		DispatcherOptions: tgsender.Options{Workers: 4, MaxRetries: 0},
	}, nil
}

// Close releases the session store and the database pool.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	errs = append(errs, a.infra.Close())
	a.infra = nil
	return errors.Join(errs...)
}
