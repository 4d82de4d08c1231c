package state

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

type testSession struct {
	Step   string  `json:"step"`
	Items  []int64 `json:"items,omitempty"`
	Cursor int     `json:"cursor"`
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	var store Store[testSession] = NewMemoryStore[testSession]()

	if _, ok, err := store.Get(ctx, 7); ok || err != nil {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, 7, testSession{Step: "theme", Cursor: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, _ := store.Get(ctx, 7)
	if !ok || got.Step != "theme" || got.Cursor != 2 {
		t.Fatalf("unexpected session %+v ok=%v", got, ok)
	}
	if _, ok, _ := store.Get(ctx, 8); ok {
		t.Fatalf("sessions must be per user")
	}
	if err := store.Clear(ctx, 7); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 7); ok {
		t.Fatalf("session survived clear")
	}
}

func TestRedisStoreKeys(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	def := newRedisStore[testSession](rdb, RedisOptions{})
	if got := def.key(42); got != "session:42" {
		t.Fatalf("default key %q", got)
	}
	custom := newRedisStore[testSession](rdb, RedisOptions{KeyPrefix: "insights:"})
	if got := custom.key(-5); got != "insights:-5" {
		t.Fatalf("custom key %q", got)
	}
}

func TestSessionCodec(t *testing.T) {
	in := testSession{Step: "viewing", Items: []int64{3, 2, 1}, Cursor: 1}
	raw, err := encodeSession(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeSession[testSession](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Step != in.Step || out.Cursor != in.Cursor || len(out.Items) != 3 || out.Items[0] != 3 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if _, err := decodeSession[testSession]([]byte("{")); err == nil {
		t.Fatalf("expected decode error on truncated payload")
	}
}
