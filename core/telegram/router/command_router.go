package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/insightbot/core/logger"
	tg "github.com/m3rciful/insightbot/core/telegram"
	"github.com/m3rciful/insightbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command to its own endpoint.
// Admin-only commands are guarded by AdminOnlyMiddleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	guard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		h := def.Handler
		if def.AdminOnly {
			h = guard(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  summarized(name, h),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return handleWithSummary(c, name, time.Now(), func() error { return h(c) })
	}
}
