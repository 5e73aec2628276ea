package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const (
	sidebarNavIconSize  float32 = 40
	sidebarConnIconSize float32 = 28
)

type sidebarTab struct {
	name    string
	icon    fyne.Resource
	content fyne.CanvasObject
}

type sidebarLayout struct {
	left       *fyne.Container
	rightStack *fyne.Container
	switchTo   func(name string)
	active     func() string
}

func buildSidebarLayout(tabs []sidebarTab, updateButton *iconNavButton, connIcon *widget.Icon) sidebarLayout {
	rightStack := container.NewStack()
	contentByName := make(map[string]fyne.CanvasObject, len(tabs))
	for _, tab := range tabs {
		if tab.content == nil {
			continue
		}
		contentByName[tab.name] = tab.content
		rightStack.Add(tab.content)
		tab.content.Hide()
	}

	active := ""
	for _, tab := range tabs {
		if tab.content == nil {
			continue
		}
		active = tab.name
		tab.content.Show()

		break
	}

	navButtons := make(map[string]*iconNavButton, len(tabs))
	updateNavSelection := func() {
		for name, button := range navButtons {
			button.SetSelected(name == active && !button.Disabled())
		}
	}

	switchTab := func(name string) {
		if name == active {
			return
		}
		current := contentByName[active]
		next := contentByName[name]
		if current == nil || next == nil {
			return
		}

		appLogger.Debug("switching sidebar tab", "from", active, "to", name)
		current.Hide()
		active = name
		next.Show()
		if onShow, ok := next.(interface{ OnShow() }); ok {
			onShow.OnShow()
		}
		updateNavSelection()
		rightStack.Refresh()
	}

	left := container.NewVBox()
	for _, tab := range tabs {
		if tab.content == nil {
			continue
		}
		name := tab.name
		button := newIconNavButton(tab.icon, sidebarNavIconSize, func() {
			switchTab(name)
		})
		button.SetText(name)
		navButtons[name] = button
		left.Add(button)
	}
	updateNavSelection()

	left.Add(layout.NewSpacer())
	if updateButton != nil {
		left.Add(updateButton)
	}
	if connIcon != nil {
		left.Add(container.NewCenter(container.NewGridWrap(
			fyne.NewSquareSize(sidebarConnIconSize),
			connIcon,
		)))
	}

	return sidebarLayout{
		left:       left,
		rightStack: rightStack,
		switchTo:   switchTab,
		active:     func() string { return active },
	}
}
