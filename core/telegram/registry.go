package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and callback handlers keyed by callback unique.
type Registry struct {
	commands map[string]commands.Command

	callbacksMu      sync.RWMutex
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry with a default unknown-callback responder.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds a command. Names must start with a slash and be unique.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if name == "" || cmd.Handler == nil || cmd.Description == "" {
		return r.rejectCommand(name, "invalid")
	}
	if !strings.HasPrefix(name, "/") {
		return r.rejectCommand(name, "no_slash_prefix")
	}
	if _, exists := r.commands[name]; exists {
		return r.rejectCommand(name, "duplicate")
	}
	r.commands[name] = cmd
	return nil
}

func (r *Registry) rejectCommand(name, reason string) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
		slog.String("name", name),
		slog.String("cause", reason),
	)
	return fmt.Errorf("command %q rejected: %s", name, reason)
}

// ListCommands returns commands sorted by name, optionally without hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commands))
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback adds a callback handler mapped to its unique key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return fmt.Errorf("invalid callback registration for %q", key)
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.duplicate",
			slog.String("cb_key", key),
		)
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// InitBotCommands publishes visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
