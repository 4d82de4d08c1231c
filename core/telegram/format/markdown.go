package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile("([_*\\[\\]()~`>#+\\-=|{}.!\\\\])")
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// MD escapes user-provided text for legacy Markdown messages.
func MD(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV1)
	return out
}
