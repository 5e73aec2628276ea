package ui

import (
	"strings"
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

func TestUpdateIndicatorApplySnapshotAndTap(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	var opened nzapp.UpdateSnapshot
	var openCalls int
	indicator := newUpdateIndicator(nzapp.UpdateSnapshot{}, false, func(snapshot nzapp.UpdateSnapshot) {
		openCalls++
		opened = snapshot
	})

	if indicator.Button().Visible() {
		t.Fatalf("expected hidden update button for unknown snapshot")
	}
	indicator.onTap()
	if openCalls != 0 {
		t.Fatalf("expected no tap callback when update is unknown")
	}

	indicator.ApplySnapshot(nzapp.UpdateSnapshot{
		CurrentVersion:  "0.1.0",
		UpdateAvailable: true,
		Latest:          nzapp.ReleaseInfo{Version: "0.2.0"},
	})
	if !indicator.Button().Visible() {
		t.Fatalf("expected visible update button when update is available")
	}
	if indicator.Button().text != "0.2.0" {
		t.Fatalf("expected latest version on button, got %q", indicator.Button().text)
	}

	indicator.onTap()
	if openCalls != 1 || opened.Latest.Version != "0.2.0" {
		t.Fatalf("expected tap callback with latest snapshot, calls=%d version=%q", openCalls, opened.Latest.Version)
	}

	indicator.ApplySnapshot(nzapp.UpdateSnapshot{CurrentVersion: "0.2.0"})
	if indicator.Button().Visible() {
		t.Fatalf("expected update button hidden once up to date")
	}
}

func TestBuildUpdateChangelogText(t *testing.T) {
	got := buildUpdateChangelogText(nzapp.ReleaseInfo{Version: "0.2.0", Body: "  - faster polling  "})
	if got != "## 0.2.0\n\n- faster polling" {
		t.Fatalf("unexpected changelog: %q", got)
	}
	if got := buildUpdateChangelogText(nzapp.ReleaseInfo{}); !strings.Contains(got, "No changelog provided.") {
		t.Fatalf("expected fallback changelog, got %q", got)
	}
}
