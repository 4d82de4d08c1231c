package router

import (
	"context"
	"time"

	tg "github.com/m3rciful/insightbot/core/telegram"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"
	"github.com/m3rciful/insightbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives free-form messages while a dialog is active.
type Conversation interface {
	InProgress(ctx context.Context, userID int64) bool
	HandleMessage(c tele.Context) error
}

// MessageRoutes builds handlers for text, document and photo updates.
// Messages go to the conversation when one is active, otherwise to the fallback.
func MessageRoutes(conv Conversation, fallback ui.FallbackProvider) []tg.Route {
	route := func(kind string, unknown func() tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			sender := c.Sender()
			if conv != nil && sender != nil && conv.InProgress(tghelpers.BuildContext(c), sender.ID) {
				return handleWithSummary(c, "fsm_"+kind, start, func() error {
					return conv.HandleMessage(c)
				})
			}
			if fallback != nil {
				if h := unknown(); h != nil {
					return handleWithSummary(c, "unknown_"+kind, start, func() error {
						return h(c)
					})
				}
			}
			logSkipped(c, "unknown_"+kind, start)
			return nil
		}
	}

	var unknownText, unknownDocument func() tele.HandlerFunc
	if fallback != nil {
		unknownText = fallback.UnknownText
		unknownDocument = fallback.UnknownDocument
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: route("text", unknownText)},
		{Endpoint: tele.OnDocument, Handler: route("document", unknownDocument)},
		{Endpoint: tele.OnPhoto, Handler: route("photo", unknownDocument)},
	}
}
