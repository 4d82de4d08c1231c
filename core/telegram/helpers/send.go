package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func call(c tele.Context, action, endpoint string) (context.Context, sender.Call) {
	chatID, _ := ids(c)
	return BuildContext(c), sender.Call{ChatID: chatID, Action: action, Endpoint: endpoint}
}

// rejected reports whether the dispatcher refused the job; such calls run inline.
func rejected(ctx context.Context, cl sender.Call, err error) bool {
	if !errors.Is(err, sender.ErrQueueFull) && !errors.Is(err, sender.ErrQueueClosed) {
		return false
	}
	logger.Warn(ctx, "tg.sender", "queue.fallback",
		slog.String("action", cl.Action),
		slog.String("endpoint", cl.Endpoint),
		slog.String("err", err.Error()),
	)
	return true
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx, cl := call(c, action, endpoint)
	if err := disp.Enqueue(ctx, cl, run); err != nil {
		if rejected(ctx, cl, err) {
			return run()
		}
		return err
	}
	return nil
}

func sendSync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx, cl := call(c, action, endpoint)
	err := disp.Do(ctx, cl, run)
	if rejected(ctx, cl, err) {
		return run()
	}
	return err
}

func markupOpts(mode tele.ParseMode, markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: mode}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendMD queues a Markdown message with optional reply markup to the current recipient.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := markupOpts(tele.ModeMarkdown, markup)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendMD edits the message behind a callback (Markdown) or sends a new one.
// It waits for earlier queued sends of the chat so the edit lands on the latest state.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := markupOpts(tele.ModeMarkdown, markup)
	return sendSync(c, "send.edit", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}

// SendPhoto sends a photo and returns the delivery result.
func SendPhoto(c tele.Context, photo *tele.Photo) error {
	return sendSync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(photo)
	})
}

// SendDocument sends a document and returns the delivery result.
// Local files may be removed once it returns.
func SendDocument(c tele.Context, doc *tele.Document) error {
	return sendSync(c, "send.document", "sendDocument", func() error {
		return c.Send(doc)
	})
}
