package ui

import (
	"context"
	"time"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
)

const uiActionTimeout = 10 * time.Second

func BuildRuntimeDependencies(rt *nzapp.Runtime, launch LaunchOptions, onQuit func()) RuntimeDependencies {
	dep := RuntimeDependencies{
		Launch: launch,
		Actions: ActionDependencies{
			OnQuit: onQuit,
		},
	}
	if rt == nil {
		return dep
	}

	dep.Data = DataDependencies{
		Config:            rt.Config,
		EngineURL:         rt.Config.Engine.BaseURL,
		Bus:               rt.Bus,
		Settings:          rt.Settings,
		MaskSession:       rt.MaskSession,
		CurrentConfig:     rt.CurrentConfig,
		CurrentConnStatus: rt.CurrentConnStatus,
		RecentStatus:      rt.RecentStatus,
	}
	if rt.Poller != nil {
		dep.Data.CurrentStatus = rt.Poller.Current
	} else {
		dep.Data.CurrentStatus = func() (domain.StatusSnapshot, bool) { return domain.StatusSnapshot{}, false }
	}
	dep.Data.CurrentUpdateSnapshot = rt.UpdateChecker.CurrentSnapshot

	dep.Actions.OnSave = rt.SaveAndApplyConfig
	dep.Actions.OnClearDB = func() error {
		ctx, cancel := context.WithTimeout(rt.Ctx, uiActionTimeout)
		defer cancel()

		return rt.ClearDatabase(ctx)
	}
	dep.Actions.OnReloadSettings = func() error {
		return rt.ReloadSettings(rt.Ctx)
	}
	dep.Actions.OnStart = rt.Start
	dep.Actions.AttachNotifier = func(sender notifications.Sender) {
		rt.Notifier.Set(sender)
	}

	return dep
}
