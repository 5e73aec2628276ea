package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// iconNavButton is a square sidebar button with an optional caption under the icon.
type iconNavButton struct {
	widget.DisableableWidget

	icon     fyne.Resource
	text     string
	iconSize float32
	onTap    func()
	selected bool
	hovered  bool
}

func newIconNavButton(icon fyne.Resource, iconSize float32, onTap func()) *iconNavButton {
	b := &iconNavButton{
		icon:     icon,
		iconSize: iconSize,
		onTap:    onTap,
	}
	b.ExtendBaseWidget(b)

	return b
}

func (b *iconNavButton) SetIcon(icon fyne.Resource) {
	b.icon = icon
	b.Refresh()
}

func (b *iconNavButton) SetText(text string) {
	if b.text == text {
		return
	}
	b.text = text
	b.Refresh()
}

func (b *iconNavButton) SetSelected(selected bool) {
	if b.selected == selected {
		return
	}
	b.selected = selected
	b.Refresh()
}

func (b *iconNavButton) Tapped(_ *fyne.PointEvent) {
	if b.Disabled() {
		return
	}
	if b.onTap != nil {
		b.onTap()
	}
}

func (b *iconNavButton) MouseIn(_ *desktop.MouseEvent) {
	b.hovered = true
	b.Refresh()
}

func (b *iconNavButton) MouseMoved(_ *desktop.MouseEvent) {}

func (b *iconNavButton) MouseOut() {
	b.hovered = false
	b.Refresh()
}

func (b *iconNavButton) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.Transparent)
	bg.CornerRadius = b.Theme().Size(theme.SizeNameInputRadius)

	img := canvas.NewImageFromResource(b.icon)
	img.FillMode = canvas.ImageFillContain

	caption := canvas.NewText(b.text, color.Black)
	caption.Alignment = fyne.TextAlignCenter
	caption.TextSize = b.Theme().Size(theme.SizeNameCaptionText)

	r := &iconNavButtonRenderer{
		button:     b,
		background: bg,
		icon:       img,
		caption:    caption,
		objects:    []fyne.CanvasObject{bg, img, caption},
	}
	r.Refresh()

	return r
}

type iconNavButtonRenderer struct {
	button     *iconNavButton
	background *canvas.Rectangle
	icon       *canvas.Image
	caption    *canvas.Text
	objects    []fyne.CanvasObject
}

func (r *iconNavButtonRenderer) captionHeight() float32 {
	if r.button.text == "" {
		return 0
	}

	return r.caption.MinSize().Height
}

func (r *iconNavButtonRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	pad := r.button.Theme().Size(theme.SizeNamePadding)
	textH := r.captionHeight()
	maxW := size.Width - pad*2
	maxH := size.Height - pad*2 - textH

	iconSide := min(r.button.iconSize, maxW, maxH)
	if iconSide < 0 {
		iconSide = 0
	}

	iconSize := fyne.NewSquareSize(iconSide)
	r.icon.Resize(iconSize)
	r.icon.Move(fyne.NewPos((size.Width-iconSide)/2, pad))

	r.caption.Resize(fyne.NewSize(size.Width, textH))
	r.caption.Move(fyne.NewPos(0, pad+iconSide))
}

func (r *iconNavButtonRenderer) MinSize() fyne.Size {
	pad := r.button.Theme().Size(theme.SizeNamePadding) * 2
	side := r.button.iconSize + pad
	width := side
	if textW := r.caption.MinSize().Width + pad; r.button.text != "" && textW > width {
		width = textW
	}

	return fyne.NewSize(width, side+r.captionHeight())
}

func (r *iconNavButtonRenderer) Refresh() {
	th := r.button.Theme()
	v := fyne.CurrentApp().Settings().ThemeVariant()

	switch {
	case r.button.Disabled():
		r.background.FillColor = th.Color(theme.ColorNameDisabledButton, v)
	case r.button.selected:
		r.background.FillColor = th.Color(theme.ColorNameSelection, v)
	case r.button.hovered:
		r.background.FillColor = th.Color(theme.ColorNameHover, v)
	default:
		r.background.FillColor = color.Transparent
	}
	r.background.CornerRadius = th.Size(theme.SizeNameInputRadius)
	r.background.Refresh()

	icon := r.button.icon
	if r.button.Disabled() && icon != nil {
		icon = theme.NewDisabledResource(icon)
	}
	r.icon.Resource = icon
	r.icon.Refresh()

	r.caption.Text = r.button.text
	r.caption.Color = th.Color(theme.ColorNameForeground, v)
	r.caption.Refresh()

	r.Layout(r.button.Size())
}

func (r *iconNavButtonRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *iconNavButtonRenderer) Destroy() {}
