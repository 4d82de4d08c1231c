// Package bot binds the conversation engine to telebot.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m3rciful/insightbot/core/logger"
	tg "github.com/m3rciful/insightbot/core/telegram"
	"github.com/m3rciful/insightbot/core/telegram/callbacks"
	"github.com/m3rciful/insightbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/insightbot/core/telegram/helpers"
	"github.com/m3rciful/insightbot/insights/flow"

	tele "gopkg.in/telebot.v4"
)

const component = "tg"

// Engine is the conversation engine contract the adapter drives.
type Engine interface {
	Handle(ctx context.Context, userID int64, ev flow.Event) ([]flow.Effect, error)
	InProgress(ctx context.Context, userID int64) bool
}

// Adapter translates telebot updates into engine events and executes effects.
type Adapter struct {
	engine Engine
}

// New returns an adapter over engine.
func New(engine Engine) *Adapter {
	return &Adapter{engine: engine}
}

// Register adds commands and button callbacks to reg.
func (a *Adapter) Register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: a.command(flow.CmdStart), Description: "Главное меню"}},
		{"/help", commands.Command{Handler: a.command(flow.CmdHelp), Description: "Справка"}},
		{"/cancel", commands.Command{Handler: a.command(flow.CmdCancel), Description: "Отмена текущей операции"}},
		{"/stats", commands.Command{Handler: a.command(flow.CmdStats), Description: "Статистика", AdminOnly: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}
	for _, act := range flow.Actions {
		if err := reg.RegisterCallback(string(act), a.button); err != nil {
			return err
		}
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	return nil
}

func (a *Adapter) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev := flow.Command{Name: name}
		if s := c.Sender(); s != nil {
			ev.FirstName = s.FirstName
		}
		return a.dispatch(c, ev)
	}
}

func (a *Adapter) button(c tele.Context) error {
	return a.dispatch(c, flow.Button{
		Action: flow.Action(callbacks.CallbackKey(c)),
		Arg:    callbacks.CallbackPayload(c),
	})
}

// InProgress reports whether the user has an active dialog.
func (a *Adapter) InProgress(ctx context.Context, userID int64) bool {
	return a.engine.InProgress(ctx, userID)
}

// HandleMessage forwards text, document and photo messages to the engine.
func (a *Adapter) HandleMessage(c tele.Context) error {
	ev, ok := eventFromMessage(c.Message())
	if !ok {
		return nil
	}
	return a.dispatch(c, ev)
}

func (a *Adapter) dispatch(c tele.Context, ev flow.Event) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	effects, err := a.engine.Handle(ctx, sender.ID, ev)
	applyErr := a.apply(ctx, c, effects)
	if err != nil {
		return err
	}
	return applyErr
}

// apply executes effects in order and answers a pending callback exactly once.
func (a *Adapter) apply(ctx context.Context, c tele.Context, effects []flow.Effect) error {
	var (
		alert    string
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, eff := range effects {
		switch e := eff.(type) {
		case flow.Reply:
			keep(a.reply(c, e))
		case flow.Alert:
			alert = e.Text
		case flow.SendAttachment:
			if err := sendAttachment(c, e); err != nil {
				a.deliveryFailed(ctx, "attachment", err)
				alert = e.FailAlert
			}
		case flow.SendFile:
			if err := sendFile(c, e); err != nil {
				a.deliveryFailed(ctx, "export", err)
				alert = e.FailAlert
			}
		}
	}

	if c.Callback() != nil {
		resp := &tele.CallbackResponse{}
		if alert != "" {
			resp.Text = alert
			resp.ShowAlert = true
		}
		keep(c.Respond(resp))
	} else if alert != "" {
		keep(tghelpers.SendMD(c, alert))
	}
	return firstErr
}

func (a *Adapter) reply(c tele.Context, r flow.Reply) error {
	markup := Markup(r.Keyboard)
	if r.Edit && c.Callback() != nil {
		err := tghelpers.EditOrSendMD(c, r.Text, markup)
		if isNotModified(err) {
			return nil
		}
		return err
	}
	return tghelpers.SendMD(c, r.Text, markup)
}

func sendAttachment(c tele.Context, e flow.SendAttachment) error {
	file := tele.File{FileID: e.Ref}
	if e.Photo {
		return tghelpers.SendPhoto(c, &tele.Photo{File: file, Caption: e.Caption})
	}
	return tghelpers.SendDocument(c, &tele.Document{File: file, FileName: e.Filename, Caption: e.Caption})
}

// sendFile uploads a local file and always removes it afterwards.
func sendFile(c tele.Context, e flow.SendFile) error {
	defer func() {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn(tghelpers.BuildContext(c), "service.export", "export.cleanup",
				slog.String("status", "fail"),
				slog.String("path", e.Path),
				slog.String("err", err.Error()),
			)
		}
	}()
	doc := &tele.Document{File: tele.FromDisk(e.Path), FileName: filepath.Base(e.Path), Caption: e.Caption}
	if err := tghelpers.SendDocument(c, doc); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}

func (a *Adapter) deliveryFailed(ctx context.Context, what string, err error) {
	logger.Error(ctx, component, "delivery."+what,
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}

// UnknownText answers text sent outside a dialog.
func (a *Adapter) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.dispatch(c, flow.Text{Body: c.Text()})
	}
}

// UnknownDocument answers files and photos sent outside a dialog.
func (a *Adapter) UnknownDocument() tele.HandlerFunc {
	return a.HandleMessage
}

// UnknownCallback answers buttons with an unregistered unique.
func (a *Adapter) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: flow.StaleText(), ShowAlert: true})
	}
}

// OnAdminReject answers non-admin users calling admin commands.
func (a *Adapter) OnAdminReject(c tele.Context) error {
	return tghelpers.SendMD(c, flow.AdminOnlyText())
}

// OnRateLimited answers throttled updates.
func (a *Adapter) OnRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: flow.RateLimitedText()})
	}
	return nil
}
