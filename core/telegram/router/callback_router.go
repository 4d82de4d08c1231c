package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/insightbot/core/telegram"
	"github.com/m3rciful/insightbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// Handlers answer the callback themselves so they can attach an alert.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		key := cb.Unique
		if key == "" {
			key, _ = callbacks.ParseCallbackData(cb)
		}
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := opts.NotFound
			if fallback == nil {
				fallback = reg.CallbackNotFound()
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, func() error {
				if fallback != nil {
					return fallback(c)
				}
				return c.Respond()
			}, extras...)
		}

		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
