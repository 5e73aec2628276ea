package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWriterCapacity = 256
	writerMaxAttempts     = 3
	writerRetryStep       = 300 * time.Millisecond
)

type writeCmd struct {
	name string
	fn   func(context.Context) error
	done chan struct{}
}

// WriterQueue serializes background database writes and retries failed ones
// with a linear backoff. Writes are dropped when the queue context ends.
type WriterQueue struct {
	logger    *slog.Logger
	queue     chan writeCmd
	retryStep time.Duration

	startOnce sync.Once
}

func NewWriterQueue(logger *slog.Logger, capacity int) *WriterQueue {
	if capacity <= 0 {
		capacity = defaultWriterCapacity
	}
	if logger == nil {
		logger = slog.Default().With("component", "persistence.writer")
	}

	return &WriterQueue{
		logger:    logger,
		queue:     make(chan writeCmd, capacity),
		retryStep: writerRetryStep,
	}
}

// Enqueue schedules fn. It never blocks the caller.
func (w *WriterQueue) Enqueue(name string, fn func(context.Context) error) {
	w.push(writeCmd{name: name, fn: fn})
}

// Flush waits until every write enqueued before the call has been attempted.
func (w *WriterQueue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	w.push(writeCmd{name: "flush", done: done})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *WriterQueue) push(cmd writeCmd) {
	select {
	case w.queue <- cmd:
	default:
		w.logger.Warn("db writer queue full, deferring write", "cmd", cmd.name)
		go func() { w.queue <- cmd }()
	}
}

func (w *WriterQueue) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case cmd := <-w.queue:
					if cmd.done != nil {
						close(cmd.done)

						continue
					}
					w.runWithRetry(ctx, cmd)
				}
			}
		}()
	})
}

func (w *WriterQueue) runWithRetry(ctx context.Context, cmd writeCmd) {
	for attempt := 1; attempt <= writerMaxAttempts; attempt++ {
		err := cmd.fn(ctx)
		if err == nil {
			return
		}
		w.logger.Error("db write failed", "cmd", cmd.name, "attempt", attempt, "error", err)
		if attempt == writerMaxAttempts {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * w.retryStep):
		}
	}
}
