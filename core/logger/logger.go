package logger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/insightbot/core/buildinfo"
	coreconfig "github.com/m3rciful/insightbot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdown   bool

	logWriter *asyncWriter
	levelVar  slog.LevelVar

	debugSampler = &ratioSampler{}

	// L is the base logger. It discards output until InitLogger runs.
	L = slog.New(slog.NewTextHandler(discard{}, nil))

	// DB logs database connection events.
	DB = L
	// MIG logs schema migration events.
	MIG = L
	// TG logs Telegram transport events.
	TG = L
	// TWire logs route and callback registration.
	TWire = L
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// InitLogger configures the global structured logger writing to stdout. It may be called only once.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))
		debugSampler.Set(parseDebugSample(cfg))

		logWriter = newAsyncWriter(os.Stdout, 64*1024)
		handler := newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   selectFormat(cfg),
			keyOrder: selectKeyOrder(cfg),
		})

		L = slog.New(handler)
		slog.SetDefault(L)
		DB = Component("db")
		MIG = Component("db.migrate")
		TG = Component("tg")
		TWire = Component("tg.wire")

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", selectProfile(cfg)),
		)
	})
	return nil
}

// Shutdown flushes buffered log output.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdown || logWriter == nil {
		return nil
	}
	shutdown = true
	return errors.Join(logWriter.Flush(), logWriter.Close())
}

// Component returns a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes a record carrying an explicit event attribute.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug line should be written.
func ShouldSampleDebug() bool {
	return debugSampler.Allow()
}

// RoundMS rounds duration to the nearest millisecond for consistent logging.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took returns rounded duration since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

func selectFormat(cfg *coreconfig.Config) logFormat {
	if cfg == nil {
		return formatJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch selectProfile(cfg) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(cfg *coreconfig.Config) []string {
	if cfg == nil || strings.TrimSpace(cfg.Logging.KeysOrder) == "" || cfg.Logging.KeysOrder == "default" {
		return append([]string(nil), defaultKeyOrder...)
	}
	var order []string
	for _, p := range strings.Split(cfg.Logging.KeysOrder, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func selectProfile(cfg *coreconfig.Config) string {
	if cfg == nil {
		return ""
	}
	if profile := strings.TrimSpace(cfg.Logging.Profile); profile != "" {
		return strings.ToLower(profile)
	}
	return "prod"
}

// parseDebugSample accepts "n/d" or "d" (meaning 1/d). Empty input keeps 1/50.
func parseDebugSample(cfg *coreconfig.Config) (int, int) {
	if cfg == nil {
		return 1, 50
	}
	raw := strings.TrimSpace(cfg.Logging.DebugSample)
	if raw == "" {
		return 1, 50
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 1, 50
	}
	if d, err := strconv.Atoi(raw); err == nil {
		return 1, d
	}
	return 1, 50
}

// ratioSampler lets numerator out of every denominator events through.
// A non-positive ratio disables sampling.
type ratioSampler struct {
	mu               sync.Mutex
	numerator, denom int
	counter          int
}

func (s *ratioSampler) Set(numerator, denominator int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if numerator <= 0 || denominator <= 0 {
		numerator, denominator = 0, 0
	}
	if numerator > denominator {
		numerator = denominator
	}
	s.numerator, s.denom, s.counter = numerator, denominator, 0
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denom <= 0 {
		return true
	}
	s.counter++
	if s.counter > s.denom {
		s.counter = 1
	}
	return s.counter <= s.numerator
}
