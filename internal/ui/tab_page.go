package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// tabPage wraps tab content so the sidebar can notify it when it becomes visible.
type tabPage struct {
	widget.BaseWidget
	content fyne.CanvasObject
	onShow  func()
}

func newTabPage(content fyne.CanvasObject, onShow func()) *tabPage {
	p := &tabPage{content: content, onShow: onShow}
	p.ExtendBaseWidget(p)

	return p
}

func (p *tabPage) OnShow() {
	if p.onShow != nil {
		p.onShow()
	}
}

func (p *tabPage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}
