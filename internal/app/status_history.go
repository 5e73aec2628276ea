package app

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

type statusWriter interface {
	Insert(ctx context.Context, s domain.StatusSnapshot) error
	Prune(ctx context.Context, keep int) (int64, error)
}

type writeQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// StatusHistory appends received snapshots to the local history through the
// writer queue and periodically trims it to keepRows.
type StatusHistory struct {
	repo       statusWriter
	queue      writeQueue
	keepRows   int
	pruneEvery uint64
	logger     *slog.Logger

	recorded atomic.Uint64
}

func NewStatusHistory(repo statusWriter, queue writeQueue, keepRows int, logger *slog.Logger) *StatusHistory {
	if logger == nil {
		logger = slog.Default().With("component", "app.status_history")
	}

	return &StatusHistory{
		repo:       repo,
		queue:      queue,
		keepRows:   keepRows,
		pruneEvery: historyPruneEvery,
		logger:     logger,
	}
}

// Record is safe to call from the poller's fetch goroutines.
func (h *StatusHistory) Record(s domain.StatusSnapshot) {
	if h == nil || h.repo == nil || h.queue == nil {
		return
	}
	h.queue.Enqueue("status_history_insert", func(ctx context.Context) error {
		return h.repo.Insert(ctx, s)
	})

	if n := h.recorded.Add(1); n%h.pruneEvery == 0 {
		h.queue.Enqueue("status_history_prune", func(ctx context.Context) error {
			removed, err := h.repo.Prune(ctx, h.keepRows)
			if err != nil {
				return err
			}
			if removed > 0 {
				h.logger.Debug("pruned status history", "removed", removed, "keep", h.keepRows)
			}

			return nil
		})
	}
}
