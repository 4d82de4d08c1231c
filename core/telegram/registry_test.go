package telegram

import (
	"testing"

	"github.com/m3rciful/insightbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Main menu"}); err != nil {
		t.Fatalf("RegisterCommand: %v", err)
	}
	if err := reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true}); err != nil {
		t.Fatalf("RegisterCommand: %v", err)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "Help"}); err == nil {
		t.Fatal("expected slash prefix error")
	}

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 2 {
		t.Fatalf("all commands = %+v", all)
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("menu", noop); err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}
	if err := reg.RegisterCallback("menu", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, ok := reg.GetCallback("menu"); !ok {
		t.Fatal("menu callback not found")
	}
	if _, ok := reg.GetCallback("other"); ok {
		t.Fatal("unexpected callback")
	}
	if got := reg.ListCallbacks(); len(got) != 1 || got[0] != "menu" {
		t.Fatalf("ListCallbacks = %v", got)
	}
}

func TestBuildPoller(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8000, URL: "https://bot.example.com/webhook"},
	})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook poller, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8000" || wh.Endpoint.PublicURL != "https://bot.example.com/webhook" {
		t.Fatalf("unexpected webhook settings: %+v", wh)
	}

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	if !ok {
		t.Fatal("expected long poller")
	}
	if lp.Timeout != defaultLongPollTimeout {
		t.Fatalf("timeout = %v", lp.Timeout)
	}
}
