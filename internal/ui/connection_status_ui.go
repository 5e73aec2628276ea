package ui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
)

type connectionStatusPresenter struct {
	window       fyne.Window
	statusLabels []*widget.Label
	sidebarIcon  *widget.Icon

	mu      sync.RWMutex
	current connectors.ConnectionStatus
}

func newConnectionStatusPresenter(
	window fyne.Window,
	initialStatus connectors.ConnectionStatus,
	statusLabels ...*widget.Label,
) *connectionStatusPresenter {
	presenter := &connectionStatusPresenter{
		window:       window,
		statusLabels: statusLabels,
		sidebarIcon:  widget.NewIcon(connStatusIcon(initialStatus)),
		current:      initialStatus,
	}
	presenter.applyUI(initialStatus)

	return presenter
}

func (p *connectionStatusPresenter) SidebarIcon() *widget.Icon {
	return p.sidebarIcon
}

func (p *connectionStatusPresenter) Set(status connectors.ConnectionStatus) {
	p.mu.Lock()
	p.current = status
	p.mu.Unlock()
	p.applyUI(status)
}

func (p *connectionStatusPresenter) CurrentStatus() connectors.ConnectionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

func (p *connectionStatusPresenter) applyUI(status connectors.ConnectionStatus) {
	if p.window != nil {
		p.window.SetTitle(formatWindowTitle(status))
	}
	text := formatConnStatus(status)
	for _, label := range p.statusLabels {
		if label != nil {
			label.SetText(text)
		}
	}
	if p.sidebarIcon != nil {
		p.sidebarIcon.SetResource(connStatusIcon(status))
	}
}

func formatConnStatus(status connectors.ConnectionStatus) string {
	state := status.State
	if state == "" {
		state = connectors.ConnectionStateUnknown
	}
	text := "Engine " + string(state)
	if target := strings.TrimSpace(status.Target); target != "" {
		text += " (" + target + ")"
	}
	if errText := strings.TrimSpace(status.Err); errText != "" {
		text += ": " + errText
	}

	return text
}

func formatWindowTitle(status connectors.ConnectionStatus) string {
	return fmt.Sprintf("%s %s - %s", nzapp.DisplayName, nzapp.BuildVersion(), formatConnStatus(status))
}

func connStatusIcon(status connectors.ConnectionStatus) fyne.Resource {
	switch status.State {
	case connectors.ConnectionStateConnected:
		return theme.ConfirmIcon()
	case connectors.ConnectionStateDisconnected:
		return theme.ErrorIcon()
	default:
		return theme.QuestionIcon()
	}
}

func initialConnStatus(dep RuntimeDependencies) connectors.ConnectionStatus {
	if dep.Data.CurrentConnStatus != nil {
		if status, ok := dep.Data.CurrentConnStatus(); ok {
			return status
		}
	}
	status := connectors.ConnectionStatus{
		State:  connectors.ConnectionStateUnknown,
		Target: dep.Data.EngineURL,
	}
	if strings.TrimSpace(dep.Data.EngineURL) == "" {
		status.Err = "no engine configured"
	}

	return status
}
