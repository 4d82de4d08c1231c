package telegram

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func dialErr() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestRetryTransportRepeatsDialFailures(t *testing.T) {
	base := &scriptedTransport{errs: []error{dialErr(), dialErr()}}
	rt := &retryTransport{base: base, retries: 2, backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader(`{"a":1}`))
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || base.calls != 3 {
		t.Fatalf("status=%d calls=%d", resp.StatusCode, base.calls)
	}
}

func TestRetryTransportStopsAtLimit(t *testing.T) {
	base := &scriptedTransport{errs: []error{dialErr(), dialErr()}}
	rt := &retryTransport{base: base, retries: 1, backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 2 {
		t.Fatalf("calls=%d", base.calls)
	}
}

func TestRetryTransportSkipsPlainErrors(t *testing.T) {
	base := &scriptedTransport{errs: []error{errors.New("boom")}}
	rt := &retryTransport{base: base, retries: 3, backoff: time.Millisecond}

	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("calls=%d", base.calls)
	}
}
