package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies replies for updates that arrive outside an active
// dialog: stray text, unexpected files or photos, and stale buttons.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
