package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"cb_key",
	"step",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"region",
	"industry",
	"insight_id",
	"payload",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"path",
	"err",
	"err_code",
	"cause",
	"attempts",
}

var allowedStatus = map[string]struct{}{
	"ok": {}, "fail": {}, "skip": {}, "retry": {}, "rate_limited": {}, "cancelled": {},
}

var allowedOutcome = map[string]struct{}{
	"ok": {}, "fail": {}, "cancelled": {}, "rate_limited": {},
}

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as ordered JSON objects or key=value lines.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	isJSON := h.cfg.format == formatJSON
	ts := r.Time.UTC()
	fields := map[string]any{
		"ts":    ts.Truncate(time.Millisecond).Format(timeFormatMillis),
		"level": levelName(r.Level),
	}
	if isJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		collect(fields, prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(fields, prefix, a)
		return true
	})
	addContextFields(ctx, fields)

	if rid, _ := fields["rid"].(string); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if isJSON {
				fields["rid_full"] = rid
			}
			fields["rid"] = compact
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		fields["event"] = r.Message
		if r.Message == "" {
			fields["event"] = "unknown"
		}
	}
	if c, _ := fields["component"].(string); c == "" {
		fields["component"] = "app"
	}
	normalizeEnums(fields)

	var line []byte
	if isJSON {
		var err error
		if line, err = formatJSONLine(fields, h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = formatKVLine(fields, h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func collect(fields map[string]any, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			collect(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := normalizeValue(key, v); ok {
		fields[k] = val
	}
}

// normalizeValue converts durations into *_ms integers and drops empty values.
func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		s := strings.TrimSpace(v.String())
		return key, s, s != ""
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case fmt.Stringer:
		s := x.String()
		return key, s, s != ""
	default:
		return key, fmt.Sprint(x), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

func normalizeEnums(fields map[string]any) {
	if s, ok := fields["status"].(string); ok {
		s = strings.ToLower(s)
		if _, known := allowedStatus[s]; known {
			fields["status"] = s
		}
	}
	if o, ok := fields["outcome"].(string); ok {
		o = strings.ToLower(o)
		if _, known := allowedOutcome[o]; known {
			fields["outcome"] = o
		} else {
			delete(fields, "outcome")
		}
	}
}

func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setIfAbsent := func(key string, val any, present bool) {
		if !present {
			return
		}
		if _, ok := fields[key]; !ok {
			fields[key] = val
		}
	}
	rid := RIDFrom(ctx)
	setIfAbsent("rid", rid, rid != "")
	uid := UserIDFrom(ctx)
	setIfAbsent("user_id", uid, uid != 0)
	upd := UpdateIDFrom(ctx)
	setIfAbsent("update_id", upd, upd != 0)
	cid := ChatIDFrom(ctx)
	setIfAbsent("chat_id", cid, cid != 0)
	hid := HandlerFrom(ctx)
	setIfAbsent("handler", hid, hid != "")
}

func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, key := range order {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	var rest []string
	for key := range fields {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func formatJSONLine(fields map[string]any, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range orderedKeys(fields, order) {
		data, err := json.Marshal(fields[key])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func formatKVLine(fields map[string]any, order []string) []byte {
	var b strings.Builder
	for i, key := range orderedKeys(fields, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		s := fmt.Sprint(fields[key])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
