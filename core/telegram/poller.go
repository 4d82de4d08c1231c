package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/insightbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns a webhook listener in webhook mode and a long poller otherwise.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}

	timeout := defaultLongPollTimeout
	if opts.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}
