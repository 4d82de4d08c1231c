package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/insightbot/core/logger"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"
	"github.com/m3rciful/insightbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary is the one-line record written for every routed update.
type summary struct {
	handler string
	start   time.Time
	status  string
	outcome string
	err     error
	extras  []slog.Attr
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	s := summary{handler: handlerName, start: start, status: "ok", outcome: "ok", err: err, extras: extras}
	if err != nil {
		s.status, s.outcome = "fail", "fail"
	}
	s.write(c)
	return err
}

// logSkipped records an update no handler wanted.
func logSkipped(c tele.Context, handlerName string, start time.Time) {
	summary{handler: handlerName, start: start, status: "skip", outcome: "ok"}.write(c)
}

func (s summary) write(c tele.Context) {
	ctx := tghelpers.WithHandler(c, s.handler)
	msgs, kb := middleware.GetCounters(c)

	attrs := []slog.Attr{
		slog.String("status", s.status),
		slog.String("handler", s.handler),
		slog.String("outcome", s.outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.Took(s.start).Milliseconds()),
	}
	if s.err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(s.err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(s.err)),
		)
	}
	attrs = append(attrs, s.extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

// normalizeHandlerName turns "/Start" or "new insight" into "start" and "new_insight".
func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		code := strings.TrimSpace(c.Code())
		if code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
	}
	return "UNKNOWN_ERROR"
}
