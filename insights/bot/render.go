package bot

import (
	"strings"

	"github.com/m3rciful/insightbot/core/telegram/keyboard"
	"github.com/m3rciful/insightbot/insights/flow"

	tele "gopkg.in/telebot.v4"
)

// Markup converts an engine keyboard into an inline reply markup.
func Markup(kb *flow.Keyboard) *tele.ReplyMarkup {
	if kb == nil || len(kb.Buttons) == 0 {
		return nil
	}
	btns := make([]keyboard.InlineBtn, len(kb.Buttons))
	for i, b := range kb.Buttons {
		btns[i] = keyboard.InlineBtn{Text: b.Label, Unique: string(b.Action), Data: b.Arg}
	}
	return keyboard.Grid(btns, kb.Columns)
}

// eventFromMessage maps an inbound message to an engine event.
// Photos win over documents; telegram never sets both.
func eventFromMessage(m *tele.Message) (flow.Event, bool) {
	switch {
	case m == nil:
		return nil, false
	case m.Photo != nil && m.Photo.FileID != "":
		return flow.Photo{Ref: m.Photo.FileID}, true
	case m.Document != nil && m.Document.FileID != "":
		return flow.Document{Ref: m.Document.FileID, Name: m.Document.FileName}, true
	case m.Text != "":
		return flow.Text{Body: m.Text}, true
	}
	return nil, false
}

// isNotModified matches the API error for an edit that changes nothing,
// such as pressing "next" on the last record.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
