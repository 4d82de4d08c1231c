package middleware

import (
	"log/slog"

	"github.com/m3rciful/insightbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
// A zero AdminID rejects everyone: admin commands stay closed until an admin is configured.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only the configured admin reach downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender != nil && opts.AdminID != 0 && sender.ID == opts.AdminID {
				return next(c)
			}
			var userID int64
			if sender != nil {
				userID = sender.ID
			}
			logger.TG.Warn("admin check rejected",
				slog.String("event", "tg.admin_reject"),
				slog.Int64("user_id", userID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
