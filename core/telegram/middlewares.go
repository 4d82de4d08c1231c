package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/insightbot/core/config"
	"github.com/m3rciful/insightbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain: recover, optional rate limit, logger, metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
