package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits Telebot's "\f<unique>|<payload>" encoding.
// The payload may be empty.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns cb.Unique if present; otherwise parses it from Data.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	k, _ := ParseCallbackData(cb)
	return k
}

// CallbackPayload returns the payload of the current callback.
// Telebot strips the unique from Data for registered endpoints only,
// so both encodings are accepted.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Data
	}
	_, payload := ParseCallbackData(cb)
	return payload
}

// PayloadInt parses the callback payload as int.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(CallbackPayload(c))
}
