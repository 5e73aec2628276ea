package ui

import (
	"context"
	"image"
	"sync"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

func bindPresentationListeners(dep RuntimeDependencies, view *mainView) func() {
	runOnUI := dep.UIHooks.runOnUI()
	feed := newSnapshotFeed(
		newSnapshotImageLoader(dep.Data.EngineURL, nil).Load,
		dep.UIHooks.runAsync(),
		func(snapshot domain.StatusSnapshot, img image.Image, err error) {
			runOnUI(func() {
				view.statusTab.Apply(snapshot, img, err)
			})
		},
	)

	appLogger.Debug("starting UI event listeners")
	stop := startUIEventListeners(dep.Data.Bus, uiEventHandlers{
		OnConnStatus: func(status connectors.ConnectionStatus) {
			runOnUI(func() {
				view.connStatus.Set(status)
			})
		},
		OnStatusSnapshot: feed.Push,
		OnSettingsCommitted: func() {
			runOnUI(view.pluginTab.OnCommitted)
		},
		OnSettingsSaveFailed: func(failed domain.SettingsSaveFailed) {
			runOnUI(func() {
				view.pluginTab.OnSaveFailed(failed)
			})
		},
		OnUpdateSnapshot: func(snapshot nzapp.UpdateSnapshot) {
			runOnUI(func() {
				view.updateIndicator.ApplySnapshot(snapshot)
			})
		},
	})

	if dep.Data.CurrentConnStatus != nil {
		if status, ok := dep.Data.CurrentConnStatus(); ok {
			view.connStatus.Set(status)
		}
	}
	if dep.Data.CurrentStatus != nil {
		if snapshot, ok := dep.Data.CurrentStatus(); ok {
			feed.Push(snapshot)
		}
	}
	if dep.Data.CurrentUpdateSnapshot != nil {
		if snapshot, ok := dep.Data.CurrentUpdateSnapshot(); ok {
			view.updateIndicator.ApplySnapshot(snapshot)
		}
	}

	return stop
}

// snapshotFeed loads snapshot images one at a time. Snapshots arriving while
// a load is in flight replace each other so only the newest one is loaded next.
type snapshotFeed struct {
	load     func(ctx context.Context, ref string) (image.Image, error)
	runAsync func(func())
	apply    func(domain.StatusSnapshot, image.Image, error)

	mu      sync.Mutex
	pending *domain.StatusSnapshot
	busy    bool
}

func newSnapshotFeed(
	load func(ctx context.Context, ref string) (image.Image, error),
	runAsync func(func()),
	apply func(domain.StatusSnapshot, image.Image, error),
) *snapshotFeed {
	return &snapshotFeed{
		load:     load,
		runAsync: runAsync,
		apply:    apply,
	}
}

func (f *snapshotFeed) Push(snapshot domain.StatusSnapshot) {
	f.mu.Lock()
	f.pending = &snapshot
	if f.busy {
		f.mu.Unlock()

		return
	}
	f.busy = true
	f.mu.Unlock()

	f.runAsync(f.drain)
}

func (f *snapshotFeed) drain() {
	for {
		f.mu.Lock()
		if f.pending == nil {
			f.busy = false
			f.mu.Unlock()

			return
		}
		snapshot := *f.pending
		f.pending = nil
		f.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), snapshotImageTimeout)
		img, err := f.load(ctx, snapshot.Image)
		cancel()
		if err != nil {
			appLogger.Debug("snapshot image unavailable", "error", err)
		}
		f.apply(snapshot, img, err)
	}
}
