// Package netutil classifies Bot API call failures for retry and logging decisions.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Kind is a coarse failure class used in logs and retry decisions.
type Kind string

const (
	KindNone    Kind = ""
	KindTimeout Kind = "timeout"
	KindDNS     Kind = "dns"
	KindDial    Kind = "dial"
	KindTLS     Kind = "tls"
	KindFlood   Kind = "flood"
	KindHTTP4xx Kind = "http_4xx"
	KindHTTP5xx Kind = "http_5xx"
	KindUnknown Kind = "unknown"
)

// Classify maps err onto a Kind. Transport errors are checked before API status codes.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if k := transportKind(err); k != KindUnknown {
		return k
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return KindTLS
	}

	status := StatusCode(err)
	switch {
	case status == http.StatusTooManyRequests:
		return KindFlood
	case status >= 500:
		return KindHTTP5xx
	case status >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}

func transportKind(err error) Kind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindDial
	}
	return KindUnknown
}

// Retryable reports whether repeating the call may succeed.
// Only transient transport failures, 5xx answers and flood waits qualify.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindDial, KindHTTP5xx, KindFlood:
		return true
	}
	return false
}

// RetryAfter returns the wait requested by a flood error, or zero.
func RetryAfter(err error) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return 0
}

// StatusCode extracts the HTTP status from a Bot API error, or returns 0.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return http.StatusTooManyRequests
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return 0
	}

	// telebot renders unknown API errors as "telegram: <description> (<code>)".
	msg := err.Error()
	open, end := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open < 0 || end <= open+1 {
		return 0
	}
	code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end]))
	if convErr != nil {
		return 0
	}
	return code
}
