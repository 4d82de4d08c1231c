// Package sender runs outbound Bot API calls on background lanes.
// Calls for the same chat share a lane and run in submission order.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/core/telegram/netutil"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the lane is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the buffer of each lane.
	QueueSize int
	// Workers is the number of lanes; chats are spread across them by id.
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

// Call names one outbound request for logs.
type Call struct {
	ChatID   int64
	Action   string
	Endpoint string
}

type job struct {
	ctx  context.Context
	call Call
	run  func() error
	done chan error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts  Options
	lanes []chan job
	stop  chan struct{}
	mu    sync.RWMutex
	once  sync.Once
	wg    sync.WaitGroup
	errs  atomic.Uint64
}

// NewDispatcher starts a dispatcher, filling zero options with defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts:  opts,
		lanes: make([]chan job, opts.Workers),
		stop:  make(chan struct{}),
	}
	d.wg.Add(opts.Workers)
	for i := range d.lanes {
		d.lanes[i] = make(chan job, opts.QueueSize)
		go d.drain(d.lanes[i])
	}
	return d
}

func (d *Dispatcher) lane(chatID int64) chan job {
	return d.lanes[uint64(chatID)%uint64(len(d.lanes))]
}

// Enqueue schedules run without waiting for it. Retried closures must be idempotent.
func (d *Dispatcher) Enqueue(ctx context.Context, call Call, run func() error) error {
	_, err := d.submit(ctx, call, run, false)
	return err
}

// Do schedules run behind earlier calls for the same chat and waits for its result.
func (d *Dispatcher) Do(ctx context.Context, call Call, run func() error) error {
	done, err := d.submit(ctx, call, run, true)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) submit(ctx context.Context, call Call, run func() error, wait bool) (chan error, error) {
	if run == nil {
		return nil, errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	select {
	case <-d.stop:
		return nil, ErrQueueClosed
	default:
	}

	j := job{ctx: ctx, call: call, run: run}
	if wait {
		j.done = make(chan error, 1)
	}
	select {
	case d.lane(call.ChatID) <- j:
		return j.done, nil
	default:
		return nil, ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed after all attempts.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close rejects new jobs and waits until queued ones finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		close(d.stop)
		for _, l := range d.lanes {
			close(l)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) drain(lane chan job) {
	defer d.wg.Done()
	for j := range lane {
		err := d.execute(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (d *Dispatcher) execute(j job) error {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			attrs := callAttrs(j.call, slog.Int("attempt", attempt), slog.Int("elapsed_ms", elapsedMS(start)))
			logger.Debug(ctx, component, "send.success", attrs...)
			return nil
		}
		if attempt == attempts || !netutil.Retryable(err) {
			break
		}
		wait := netutil.Backoff(d.opts.RetryBackoff, attempt, err, d.opts.MaxDuration)
		logger.Debug(ctx, component, "send.retry.backoff",
			callAttrs(j.call, slog.Int("attempt", attempt), slog.Duration("delay", wait))...)
		if sleepErr := netutil.Sleep(runCtx, wait); sleepErr != nil {
			err = errors.Join(err, sleepErr)
			break
		}
	}

	d.errs.Add(1)
	logger.Error(ctx, component, "send.fail", callAttrs(j.call,
		slog.String("error", redact(err)),
		slog.String("error_kind", string(netutil.Classify(err))),
		slog.Int("elapsed_ms", elapsedMS(start)),
	)...)
	return err
}

func callAttrs(c Call, extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 3+len(extra))
	attrs = append(attrs, slog.String("action", c.Action))
	if c.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", c.Endpoint))
	}
	if c.ChatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", c.ChatID))
	}
	return append(attrs, extra...)
}

func elapsedMS(start time.Time) int {
	return int(logger.Took(start) / time.Millisecond)
}

// redact hides bot tokens that net/http includes in request URLs.
func redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
