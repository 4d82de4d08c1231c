package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/insightbot/core/telegram/netutil"
)

const (
	dialTimeout      = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	idleConnTimeout  = 30 * time.Second
	requestTimeout   = 60 * time.Second
	keepAlive        = 30 * time.Second
	dialRetryBackoff = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Bot API calls.
// retries bounds how often a request that failed before reaching Telegram is repeated.
func BuildHTTPClient(retries int) *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   handshakeTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: &retryTransport{base: base, retries: max(retries, 0), backoff: dialRetryBackoff},
	}
}

// retryTransport repeats requests only on transport failures; API answers pass through.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries && netutil.Retryable(err); attempt++ {
		next, ok := replay(req)
		if !ok {
			break
		}
		if sleepErr := netutil.Sleep(req.Context(), netutil.Backoff(t.backoff, attempt, nil, 0)); sleepErr != nil {
			return nil, sleepErr
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}

// replay clones req with a fresh body. Streams without GetBody cannot be replayed.
func replay(req *http.Request) (*http.Request, bool) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	next.Body = body
	return next, true
}
