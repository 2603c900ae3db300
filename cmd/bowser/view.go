package main

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"bowser/pkg/resource"
)

const scrollStep = 100

// pageView shows a laid-out page and owns its scroll offset. It relays out
// whenever its size changes, scrolls with the wheel, and takes Up/Down
// once focused.
type pageView struct {
	widget.BaseWidget

	renderer *resource.BowserRenderer
	image    *canvas.Image

	page   *resource.Page
	scroll float64 // pixels
	height float64 // content height of the last layout, in pixels
	size   fyne.Size
}

var (
	_ fyne.Focusable  = (*pageView)(nil)
	_ fyne.Scrollable = (*pageView)(nil)
	_ fyne.Tappable   = (*pageView)(nil)
)

func newPageView(r *resource.BowserRenderer) *pageView {
	v := &pageView{renderer: r, image: canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))}
	v.image.FillMode = canvas.ImageFillStretch
	v.image.ScaleMode = canvas.ImageScalePixels
	v.ExtendBaseWidget(v)
	return v
}

// SetPage replaces the shown page and scrolls back to the top.
func (v *pageView) SetPage(page *resource.Page) {
	v.page = page
	v.scroll = 0
	v.draw()
}

func (v *pageView) ScrollBy(delta float64) {
	if v.page == nil {
		return
	}
	v.scroll += delta
	v.draw()
}

// Scrolled handles the mouse wheel. Fyne reports a downward wheel as a
// negative DY in device-independent units.
func (v *pageView) Scrolled(ev *fyne.ScrollEvent) {
	v.ScrollBy(-float64(ev.Scrolled.DY * v.scale()))
}

func (v *pageView) Tapped(*fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
		c.Focus(v)
	}
}

func (v *pageView) FocusGained() {}
func (v *pageView) FocusLost() {}
func (v *pageView) TypedRune(rune) {}

func (v *pageView) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDown:
		v.ScrollBy(scrollStep)
	case fyne.KeyUp:
		v.ScrollBy(-scrollStep)
	}
}

// scale converts device-independent units to pixels.
func (v *pageView) scale() float32 {
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(v); c != nil && c.Scale() > 0 {
			return c.Scale()
		}
	}
	return 1
}

// draw lays the page out at the view's pixel size and paints the part at
// the current scroll offset, which is kept inside the document.
func (v *pageView) draw() {
	scale := v.scale()
	width, height := int(v.size.Width*scale), int(v.size.Height*scale)
	if v.page == nil || width < 1 || height < 1 {
		return
	}

	res := v.renderer.Layout(v.page, float64(width))
	v.height = res.Height
	v.scroll = min(v.scroll, v.height-float64(height))
	v.scroll = max(v.scroll, 0)

	target := image.NewRGBA(image.Rect(0, 0, width, height))
	v.renderer.Render(v.page, target, v.scroll)
	v.image.Image = target
	v.image.Refresh()
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return &pageViewRenderer{view: v}
}

type pageViewRenderer struct {
	view *pageView
}

// Layout runs on every resize of the view.
func (r *pageViewRenderer) Layout(size fyne.Size) {
	r.view.image.Resize(size)
	if size == r.view.size {
		return
	}
	r.view.size = size
	r.view.draw()
}

func (r *pageViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(1, 1)
}

func (r *pageViewRenderer) Refresh() {
	r.view.draw()
}

func (r *pageViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.image}
}

func (r *pageViewRenderer) Destroy() {}
