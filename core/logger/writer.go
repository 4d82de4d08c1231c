package logger

import (
	"bufio"
	"io"
	"sync"
)

// asyncWriter moves formatted lines off the handler goroutine onto a single sink.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu   sync.Mutex
	sink *bufio.Writer
	err  error
}

func newAsyncWriter(w io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	aw := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		sink:     bufio.NewWriterSize(w, bufSize),
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case data, ok := <-w.queue:
			if !ok {
				w.setErr(w.flush())
				return
			}
			w.setErr(w.write(data))
		case ack := <-w.flushReq:
			ack <- w.flush()
		}
	}
}

// Write enqueues a copy of p. It blocks when the queue is full instead of dropping lines.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush waits until everything queued so far reached the sink.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case <-w.done:
		return w.getErr()
	case w.flushReq <- ack:
	}
	return <-ack
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) write(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.sink.Write(p); err != nil {
		return err
	}
	return w.sink.Flush()
}

func (w *asyncWriter) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sink.Flush()
}

func (w *asyncWriter) getErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
