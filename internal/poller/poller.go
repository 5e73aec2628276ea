package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

const DefaultInterval = 500 * time.Millisecond

// Fetcher retrieves one status snapshot from the inspection engine.
type Fetcher interface {
	FetchStatus(ctx context.Context) (domain.StatusSnapshot, error)
}

type Config struct {
	Interval time.Duration
	// DiscardStale drops responses that arrive after a newer one was applied.
	DiscardStale bool
	// Target names the polled endpoint in connection status events.
	Target     string
	Logger     *slog.Logger
	Bus        bus.Publisher
	OnSnapshot func(domain.StatusSnapshot)
	Now        func() time.Time
}

// Poller fetches the engine status on a fixed period. A tick never waits for
// the previous fetch, so requests may overlap.
type Poller struct {
	fetcher      Fetcher
	interval     time.Duration
	discardStale bool
	target       string
	logger       *slog.Logger
	bus          bus.Publisher
	onSnapshot   func(domain.StatusSnapshot)
	now          func() time.Time

	seq atomic.Uint64

	mu          sync.RWMutex
	latest      domain.StatusSnapshot
	latestKnown bool
	appliedSeq  uint64
	connState   connectors.ConnectionState

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func New(fetcher Fetcher, cfg Config) (*Poller, error) {
	if fetcher == nil {
		return nil, errors.New("poller: fetcher is required")
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "poller")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Poller{
		fetcher:      fetcher,
		interval:     interval,
		discardStale: cfg.DiscardStale,
		target:       cfg.Target,
		logger:       logger,
		bus:          cfg.Bus,
		onSnapshot:   cfg.OnSnapshot,
		now:          now,
		connState:    connectors.ConnectionStateUnknown,
	}, nil
}

// Start launches the tick loop. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(runCtx)
}

// Stop cancels the loop and every in-flight fetch, then waits for them to return.
func (p *Poller) Stop() {
	p.lifecycleMu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.lifecycleMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("status poller stopped")
}

// Current returns the last applied snapshot and whether one has been received.
func (p *Poller) Current() (domain.StatusSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.latest, p.latestKnown
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	p.logger.Info("status poller started", "interval", p.interval.String(), "discard_stale", p.discardStale)

	p.tick(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	seq := p.seq.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(ctx, seq)
	}()
}

func (p *Poller) poll(ctx context.Context, seq uint64) {
	snapshot, err := p.fetcher.FetchStatus(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if p.superseded(seq) {
			p.logger.Debug("dropped stale status failure", "seq", seq, "error", err)

			return
		}
		p.logger.Warn("poll status", "seq", seq, "error", err)
		p.setConnState(connectors.ConnectionStateDisconnected, err)

		return
	}
	if snapshot.ReceivedAt.IsZero() {
		snapshot.ReceivedAt = p.now()
	}

	if !p.apply(seq, snapshot) {
		p.logger.Debug("dropped stale status response", "seq", seq)

		return
	}
	p.setConnState(connectors.ConnectionStateConnected, nil)
	if p.bus != nil {
		p.bus.Publish(connectors.TopicStatusSnapshot, snapshot)
	}
	if p.onSnapshot != nil {
		p.onSnapshot(snapshot)
	}
}

// superseded reports whether a newer response was already applied.
func (p *Poller) superseded(seq uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.discardStale && seq < p.appliedSeq
}

func (p *Poller) apply(seq uint64, snapshot domain.StatusSnapshot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discardStale && seq < p.appliedSeq {
		return false
	}
	if seq > p.appliedSeq {
		p.appliedSeq = seq
	}
	p.latest = snapshot
	p.latestKnown = true

	return true
}

func (p *Poller) setConnState(state connectors.ConnectionState, cause error) {
	p.mu.Lock()
	changed := p.connState != state
	p.connState = state
	p.mu.Unlock()
	if !changed {
		return
	}

	status := connectors.ConnectionStatus{
		State:     state,
		Target:    p.target,
		Timestamp: p.now(),
	}
	if cause != nil {
		status.Err = cause.Error()
	}
	p.logger.Info("engine connection state changed", "state", state, "target", p.target)
	if p.bus != nil {
		p.bus.Publish(connectors.TopicConnStatus, status)
	}
}
