package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/insightbot/core/logger"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between messages from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		userLastSeen   = make(map[int64]time.Time)
		userLastSeenMu sync.Mutex
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}

			now := time.Now()

			userLastSeenMu.Lock()
			if last, ok := userLastSeen[user.ID]; ok && now.Sub(last) < opts.Interval {
				userLastSeenMu.Unlock()
				logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
					slog.Int64("interval_ms", opts.Interval.Milliseconds()),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}

			userLastSeen[user.ID] = now
			userLastSeenMu.Unlock()
			return next(c)
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}
