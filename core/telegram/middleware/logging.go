package middleware

import (
	"log/slog"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware attaches the update context and writes a sampled debug receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.NewUpdateContext(c)
		if logger.ShouldSampleDebug() {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if user := c.Sender(); user != nil && user.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
	}
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
	}
	return attrs
}
