package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDispatcherKeepsOrderPerChat(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3, QueueSize: 16})

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	for i := 0; i < 10; i++ {
		i := i
		chat := int64(i % 2)
		err := d.Enqueue(context.Background(), Call{ChatID: chat, Action: "send.text"}, func() error {
			mu.Lock()
			got[chat] = append(got[chat], i)
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	d.Close()

	for chat, seq := range got {
		for k := 1; k < len(seq); k++ {
			if seq[k] < seq[k-1] {
				t.Fatalf("chat %d out of order: %v", chat, seq)
			}
		}
	}
	if len(got[0])+len(got[1]) != 10 {
		t.Fatalf("lost jobs: %v", got)
	}
	if err := d.Enqueue(context.Background(), Call{}, func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("want ErrQueueClosed after close, got %v", err)
	}
}

func TestDoWaitsBehindQueuedSends(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	defer d.Close()

	var order []string
	release := make(chan struct{})
	_ = d.Enqueue(context.Background(), Call{ChatID: 5, Action: "send.text"}, func() error {
		<-release
		order = append(order, "text")
		return nil
	})
	close(release)
	err := d.Do(context.Background(), Call{ChatID: 5, Action: "send.document"}, func() error {
		order = append(order, "document")
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(order) != 2 || order[0] != "text" || order[1] != "document" {
		t.Fatalf("order %v", order)
	}
}

func TestDoReturnsFailureWithoutRetry(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := d.Do(context.Background(), Call{Action: "send.document"}, func() error {
		calls++
		return errors.New("telegram: bad request (400)")
	})
	d.Close()

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable job ran %d times", calls)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("ErrorCount=%d want 1", d.ErrorCount())
	}
}

func TestDispatcherRetriesServerErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := d.Do(context.Background(), Call{Action: "send.text"}, func() error {
		calls++
		if calls < 3 {
			return errors.New("telegram: internal server error (500)")
		}
		return nil
	})
	d.Close()

	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("ErrorCount=%d", d.ErrorCount())
	}
}

func TestEnqueueRejectsWhenLaneFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	block := make(chan struct{})
	started := make(chan struct{})
	_ = d.Enqueue(context.Background(), Call{}, func() error {
		close(started)
		<-block
		return nil
	})
	<-started
	_ = d.Enqueue(context.Background(), Call{}, func() error { return nil })
	err := d.Enqueue(context.Background(), Call{}, func() error { return nil })
	close(block)
	d.Close()
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("want ErrQueueFull, got %v", err)
	}
}

func TestRedact(t *testing.T) {
	msg := redact(errors.New("Post https://api.telegram.org/bot123:ABC-def_9/sendMessage: EOF"))
	if msg != "Post https://api.telegram.org/bot<redacted>/sendMessage: EOF" {
		t.Fatalf("token not redacted: %q", msg)
	}
	if redact(nil) != "" {
		t.Fatal("nil error must render empty")
	}
}
