package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/insightbot/core/logger"

	goredis "github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "session:"

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	URL       string
	KeyPrefix string
	// TTL of zero keeps sessions until they are cleared.
	TTL time.Duration
}

// RedisStore keeps JSON-encoded sessions in Redis keyed by user id.
type RedisStore[T any] struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore[T any](ctx context.Context, opts RedisOptions) (*RedisStore[T], error) {
	opt, err := goredis.ParseURL(strings.TrimSpace(opts.URL))
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	logger.Info(ctx, "state", "redis.connected",
		slog.String("status", "ok"),
		slog.String("host", opt.Addr),
	)
	return newRedisStore[T](rdb, opts), nil
}

func newRedisStore[T any](rdb *goredis.Client, opts RedisOptions) *RedisStore[T] {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore[T]{rdb: rdb, prefix: prefix, ttl: opts.TTL}
}

func (r *RedisStore[T]) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get loads and decodes the session for a user.
func (r *RedisStore[T]) Get(ctx context.Context, userID int64) (T, bool, error) {
	var zero T
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis: get session: %w", err)
	}
	s, err := decodeSession[T](raw)
	if err != nil {
		return zero, false, err
	}
	return s, true, nil
}

// Put encodes and stores the session for a user.
func (r *RedisStore[T]) Put(ctx context.Context, userID int64, session T) error {
	raw, err := encodeSession(session)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis: put session: %w", err)
	}
	return nil
}

// Clear deletes the session for a user.
func (r *RedisStore[T]) Clear(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis: clear session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisStore[T]) Close() error {
	return r.rdb.Close()
}

func encodeSession[T any](s T) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("redis: encode session: %w", err)
	}
	return raw, nil
}

func decodeSession[T any](raw []byte) (T, error) {
	var s T
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("redis: decode session: %w", err)
	}
	return s, nil
}
