package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "store failed" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"":             "unknown",
		"/Start":       "start",
		" new insight": "new_insight",
		"stats":        "stats",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Fatalf("normalizeHandlerName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(nil); got != "" {
		t.Fatalf("nil error code %q", got)
	}
	if got := deriveErrorCode(fmt.Errorf("wrap: %w", codedErr{})); got != "STORE_FAILED" {
		t.Fatalf("coded error code %q", got)
	}
	if got := deriveErrorCode(&plainErr{}); got != "PLAINERR" {
		t.Fatalf("pointer error code %q", got)
	}
	if got := deriveErrorCode(errors.New("x")); got != "ERRORSTRING" {
		t.Fatalf("errors.New code %q", got)
	}
}
