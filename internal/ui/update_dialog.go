package ui

import (
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

func showUpdateDialog(window fyne.Window, snapshot nzapp.UpdateSnapshot, openURL func(string) error) {
	if window == nil {
		return
	}

	header := widget.NewLabel(fmt.Sprintf(
		"%s → %s",
		versionOrUnknown(snapshot.CurrentVersion),
		versionOrUnknown(snapshot.Latest.Version),
	))
	header.TextStyle = fyne.TextStyle{Bold: true}
	header.Alignment = fyne.TextAlignCenter

	notes := widget.NewRichTextFromMarkdown(buildUpdateChangelogText(snapshot.Latest))
	notes.Wrapping = fyne.TextWrapWord
	notesScroll := container.NewVScroll(notes)
	notesScroll.SetMinSize(fyne.NewSize(0, 320))

	downloadURL := strings.TrimSpace(snapshot.Latest.HTMLURL)
	downloadButton := widget.NewButton("Download", func() {
		if openURL == nil {
			return
		}
		if err := openURL(downloadURL); err != nil {
			dialog.ShowError(err, window)
		}
	})
	downloadButton.Importance = widget.HighImportance
	if downloadURL == "" {
		downloadButton.Disable()
	}

	updateDialog := dialog.NewCustom("Update", "Close", container.NewVBox(header, notesScroll, downloadButton), window)
	updateDialog.Resize(fyne.NewSize(640, 480))
	updateDialog.Show()
}

func versionOrUnknown(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return "unknown"
	}

	return version
}

func buildUpdateChangelogText(release nzapp.ReleaseInfo) string {
	body := strings.TrimSpace(release.Body)
	if body == "" {
		body = "No changelog provided."
	}

	return fmt.Sprintf("## %s\n\n%s", versionOrUnknown(release.Version), body)
}

func openExternalURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	currentApp := fyne.CurrentApp()
	if currentApp == nil {
		return fmt.Errorf("application is not initialized")
	}
	if err := currentApp.OpenURL(parsed); err != nil {
		return fmt.Errorf("open url: %w", err)
	}

	return nil
}

func mustParseURL(rawURL string) *url.URL {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		panic(fmt.Sprintf("invalid url %q: %v", rawURL, err))
	}

	return parsed
}
