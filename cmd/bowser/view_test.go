package main

import (
	"context"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"bowser/pkg/resource"
	"bowser/pkg/text"
	"bowser/pkg/url"
)

func newTestView(t *testing.T, lines int) *pageView {
	t.Helper()
	test.NewTempApp(t)

	body := strings.Repeat("line</p>", lines)
	page, err := resource.Load(context.Background(), resource.NewLoader(nil, nil), url.Parse("data:text/html,"+body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := newPageView(resource.NewBowserRenderer(text.FontConfig{Regular: "/nonexistent/font.ttf"}))
	v.SetPage(page)

	w := test.NewWindow(v)
	t.Cleanup(w.Close)
	return v
}

func TestPageView_ResizeRelayouts(t *testing.T) {
	v := newTestView(t, 3)

	v.Resize(fyne.NewSize(200, 100))
	if b := v.image.Image.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("expected 200x100 render, got %v", b)
	}

	v.Resize(fyne.NewSize(320, 150))
	if b := v.image.Image.Bounds(); b.Dx() != 320 || b.Dy() != 150 {
		t.Errorf("expected 320x150 render after resize, got %v", b)
	}
}

func TestPageView_KeysScroll(t *testing.T) {
	v := newTestView(t, 50)
	v.Resize(fyne.NewSize(200, 100))

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	if v.scroll != scrollStep {
		t.Errorf("expected scroll %d, got %v", scrollStep, v.scroll)
	}
	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyUp})
	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyUp})
	if v.scroll != 0 {
		t.Errorf("expected scroll clamped at 0, got %v", v.scroll)
	}
}

func TestPageView_WheelScrolls(t *testing.T) {
	v := newTestView(t, 50)
	v.Resize(fyne.NewSize(200, 100))

	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -30)})
	if v.scroll != 30 {
		t.Errorf("expected scroll 30 after wheel down, got %v", v.scroll)
	}
	v.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 10)})
	if v.scroll != 20 {
		t.Errorf("expected scroll 20 after wheel up, got %v", v.scroll)
	}
}

func TestPageView_ScrollStopsAtEnd(t *testing.T) {
	v := newTestView(t, 50)
	v.Resize(fyne.NewSize(200, 100))

	for i := 0; i < 100; i++ {
		v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	}
	if want := v.height - 100; v.scroll != want {
		t.Errorf("expected scroll %v at the end of the page, got %v", want, v.scroll)
	}
}

func TestPageView_ShortPageDoesNotScroll(t *testing.T) {
	v := newTestView(t, 1)
	v.Resize(fyne.NewSize(200, 400))

	v.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	if v.scroll != 0 {
		t.Errorf("expected no scroll on a page shorter than the view, got %v", v.scroll)
	}
}
