// Package helpers carries per-update context and outbound send helpers.
package helpers

import (
	"context"

	"github.com/m3rciful/insightbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// ids returns the chat and sender of the update; absent ones are zero.
func ids(c tele.Context) (chatID, userID int64) {
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return chatID, userID
}

// NewUpdateContext builds the logging context of the update and stores it on c.
func NewUpdateContext(c tele.Context) context.Context {
	upd := c.Update()
	chatID, userID := ids(c)
	rid := logger.BuildRID(upd.ID, chatID, userID)

	ctx := logger.WithRID(logger.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// StoreContext replaces the context kept on c.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the stored update context, creating it for handlers
// reached without the logger middleware.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	return NewUpdateContext(c)
}

// WithHandler tags the update context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
