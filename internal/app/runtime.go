package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/config"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/engine"
	"github.com/nozzlewatch/nozzlewatch/internal/logging"
	"github.com/nozzlewatch/nozzlewatch/internal/maskedit"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
	"github.com/nozzlewatch/nozzlewatch/internal/persistence"
	"github.com/nozzlewatch/nozzlewatch/internal/poller"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

const (
	settingsLoadTimeout = 10 * time.Second
	shutdownFlushWait   = 3 * time.Second
)

// RuntimeOptions overrides runtime defaults. The zero value resolves paths
// under the user config dir and logs to stdout.
type RuntimeOptions struct {
	RootDir string
	Console io.Writer
}

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB

	SettingsRepo *persistence.SettingsRepo
	StatusRepo   *persistence.StatusRepo
	WriterQueue  *persistence.WriterQueue

	Engine          *engine.Client
	SettingsBackend *SettingsBackend
	Settings        *settings.Store
	MaskSession     *maskedit.Session
	Poller          *poller.Poller
	StatusHistory   *StatusHistory
	UpdateChecker   *UpdateChecker
	Notifier        *notifications.SwitchableSender

	connStatusMu    sync.RWMutex
	connStatus      connectors.ConnectionStatus
	connStatusKnown bool
}

func Initialize(parent context.Context, opts RuntimeOptions) (*Runtime, error) {
	var (
		paths Paths
		err   error
	)
	if opts.RootDir != "" {
		paths, err = PathsIn(opts.RootDir)
	} else {
		paths, err = ResolvePaths()
	}
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:      ctx,
		cancel:   cancel,
		Paths:    paths,
		Config:   cfg,
		Notifier: notifications.NewSwitchableSender(nil),
	}

	logMgr := logging.NewManagerWithConsole(opts.Console)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting nozzlewatch runtime", "version", BuildVersion(), "build_date", BuildDateYMD(), "root", paths.RootDir)

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()

		return nil, err
	}
	rt.DB = db
	rt.SettingsRepo = persistence.NewSettingsRepo(db)
	rt.StatusRepo = persistence.NewStatusRepo(db)

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b
	connSub := b.Subscribe(connectors.TopicConnStatus)
	go rt.captureConnStatus(ctx, connSub)

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), 512)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue

	var remote settingsEndpoint
	if cfg.Engine.BaseURL != "" {
		client, err := engine.New(engine.Config{
			BaseURL:   cfg.Engine.BaseURL,
			Timeout:   time.Duration(cfg.Engine.RequestTimeoutMs) * time.Millisecond,
			UserAgent: UserAgent(),
			Logger:    logMgr.Logger("engine"),
		})
		if err != nil {
			_ = rt.Close()

			return nil, fmt.Errorf("initialize engine client: %w", err)
		}
		rt.Engine = client
		remote = client
	} else {
		slog.Info("no engine configured, settings are kept locally and status polling is off")
	}
	rt.SettingsBackend = NewSettingsBackend(remote, rt.SettingsRepo, logMgr.Logger("app.settings_backend"))

	rt.Settings = settings.New(settings.Options{
		Persister: rt.SettingsBackend,
		Notifier:  rt.Notifier,
		Bus:       b,
		Logger:    logMgr.Logger("settings"),
	})
	if err := rt.ReloadSettings(ctx); err != nil {
		slog.Warn("load settings, using defaults", "error", err)
	}
	rt.MaskSession = maskedit.New(rt.Settings, maskedit.Options{
		BrushRadius: cfg.Mask.BrushRadius,
		Logger:      logMgr.Logger("maskedit"),
	})

	if cfg.History.Enabled {
		rt.StatusHistory = NewStatusHistory(rt.StatusRepo, writerQueue, cfg.History.KeepRows, logMgr.Logger("app.status_history"))
	}
	if rt.Engine != nil {
		p, err := poller.New(rt.Engine, poller.Config{
			Interval:     time.Duration(cfg.Poll.IntervalMs) * time.Millisecond,
			DiscardStale: cfg.Poll.DiscardStale,
			Target:       rt.Engine.BaseURL(),
			Logger:       logMgr.Logger("poller"),
			Bus:          b,
			OnSnapshot:   rt.StatusHistory.Record,
		})
		if err != nil {
			_ = rt.Close()

			return nil, fmt.Errorf("initialize status poller: %w", err)
		}
		rt.Poller = p
	}
	if cfg.UI.CheckUpdates {
		rt.UpdateChecker = NewUpdateChecker(UpdateCheckerConfig{
			CurrentVersion: BuildVersion(),
			Bus:            b,
			Logger:         logMgr.Logger("app.update_checker"),
		})
	}

	return rt, nil
}

// Start launches the background loops: status polling and update checks.
func (r *Runtime) Start() {
	if r.Poller != nil {
		r.Poller.Start(r.Ctx)
	}
	if r.UpdateChecker != nil {
		r.UpdateChecker.Start(r.Ctx)
	}
}

// ReloadSettings replaces committed and pending settings with the persisted ones.
func (r *Runtime) ReloadSettings(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, settingsLoadTimeout)
	defer cancel()

	persisted, err := r.SettingsBackend.LoadSettings(ctx)
	if err != nil {
		return err
	}
	r.Settings.Load(persisted)

	return nil
}

func (r *Runtime) captureConnStatus(ctx context.Context, sub bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub:
			if !ok {
				return
			}
			status, ok := raw.(connectors.ConnectionStatus)
			if !ok {
				continue
			}
			r.setConnStatus(status)
		}
	}
}

func (r *Runtime) setConnStatus(status connectors.ConnectionStatus) {
	r.connStatusMu.Lock()
	r.connStatus = status
	r.connStatusKnown = true
	r.connStatusMu.Unlock()
}

func (r *Runtime) CurrentConnStatus() (connectors.ConnectionStatus, bool) {
	r.connStatusMu.RLock()
	defer r.connStatusMu.RUnlock()

	return r.connStatus, r.connStatusKnown
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

// SaveAndApplyConfig persists cfg and applies logging and notification
// preferences immediately. It reports whether engine, poll, mask or history
// changes need a restart to take effect.
func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) (bool, error) {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	previous := r.Config
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()

		return false, err
	}
	r.Config = cfg
	r.mu.Unlock()

	if err := r.LogManager.Configure(cfg.Logging, r.Paths.LogFile); err != nil {
		return false, err
	}

	restart := previous.Engine != cfg.Engine ||
		previous.Poll != cfg.Poll ||
		previous.Mask != cfg.Mask ||
		previous.History != cfg.History ||
		previous.UI.CheckUpdates != cfg.UI.CheckUpdates

	return restart, nil
}

// RecentStatus returns up to limit snapshots from the local history, newest first.
func (r *Runtime) RecentStatus(ctx context.Context, limit int) ([]domain.StatusSnapshot, error) {
	return r.StatusRepo.ListRecent(ctx, limit)
}

// ClearDatabase drops the local settings mirror and the status history.
// Committed settings in memory are kept.
func (r *Runtime) ClearDatabase(ctx context.Context) error {
	if err := persistence.ClearDatabase(ctx, r.DB); err != nil {
		return err
	}
	slog.Info("database cleared")

	return nil
}

func (r *Runtime) Close() error {
	if r.Poller != nil {
		r.Poller.Stop()
	}
	if r.WriterQueue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushWait)
		if err := r.WriterQueue.Flush(ctx); err != nil {
			slog.Warn("flush pending db writes", "error", err)
		}
		cancel()
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}
