// Package keyboard builds inline keyboards whose buttons route by callback unique.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: Unique selects the registered callback, Data is its payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// Rows lays buttons out exactly as given.
func Rows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		line := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			line[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, line)
	}
	return markup
}

// Grid wraps buttons into rows of at most columns; the last row holds the remainder.
func Grid(buttons []InlineBtn, columns int) *tele.ReplyMarkup {
	columns = max(columns, 1)
	rows := make([][]InlineBtn, 0, (len(buttons)+columns-1)/columns)
	for i := 0; i < len(buttons); i += columns {
		rows = append(rows, buttons[i:min(i+columns, len(buttons))])
	}
	return Rows(rows...)
}
