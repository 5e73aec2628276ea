package ui

import (
	"strings"

	"fyne.io/fyne/v2/theme"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

const updateIconSize float32 = 28

type updateIndicator struct {
	button     *iconNavButton
	snapshot   nzapp.UpdateSnapshot
	known      bool
	onOpenInfo func(nzapp.UpdateSnapshot)
}

func newUpdateIndicator(
	initialSnapshot nzapp.UpdateSnapshot,
	initialKnown bool,
	onOpenInfo func(nzapp.UpdateSnapshot),
) *updateIndicator {
	indicator := &updateIndicator{
		snapshot:   initialSnapshot,
		known:      initialKnown,
		onOpenInfo: onOpenInfo,
	}
	indicator.button = newIconNavButton(theme.DownloadIcon(), updateIconSize, indicator.onTap)
	indicator.applySnapshotUI(indicator.snapshot, indicator.known)

	return indicator
}

func (u *updateIndicator) Button() *iconNavButton {
	return u.button
}

func (u *updateIndicator) ApplySnapshot(snapshot nzapp.UpdateSnapshot) {
	prevSnapshot := u.snapshot
	prevKnown := u.known
	u.snapshot = snapshot
	u.known = true

	if !prevKnown || prevSnapshot.UpdateAvailable != snapshot.UpdateAvailable || prevSnapshot.Latest.Version != snapshot.Latest.Version {
		appLogger.Info(
			"applied update snapshot",
			"current_version", strings.TrimSpace(snapshot.CurrentVersion),
			"latest_version", strings.TrimSpace(snapshot.Latest.Version),
			"update_available", snapshot.UpdateAvailable,
		)
	}
	u.applySnapshotUI(snapshot, true)
}

func (u *updateIndicator) applySnapshotUI(snapshot nzapp.UpdateSnapshot, known bool) {
	if known && snapshot.UpdateAvailable {
		u.button.SetText(snapshot.Latest.Version)
		u.button.Show()

		return
	}
	u.button.SetText("")
	u.button.Hide()
}

func (u *updateIndicator) onTap() {
	if !u.known || !u.snapshot.UpdateAvailable {
		appLogger.Debug("update button tap ignored: no available update")

		return
	}
	appLogger.Info(
		"opening update dialog",
		"current_version", strings.TrimSpace(u.snapshot.CurrentVersion),
		"latest_version", strings.TrimSpace(u.snapshot.Latest.Version),
	)
	if u.onOpenInfo != nil {
		u.onOpenInfo(u.snapshot)
	}
}
