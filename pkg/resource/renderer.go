package resource

import (
	"context"
	"image"

	"bowser/pkg/html"
	"bowser/pkg/layout"
	"bowser/pkg/render"
	"bowser/pkg/text"
	"bowser/pkg/url"
)

// Page is a loaded document, ready to lay out.
type Page struct {
	URL    url.URL
	Body   string
	Tokens []html.Token
}

// Load requests u and tokenizes the body. view-source: pages are shown as
// one block of text instead of being tokenized.
func Load(ctx context.Context, f Fetcher, u url.URL) (*Page, error) {
	body, err := f.Request(ctx, u)
	if err != nil {
		return nil, err
	}
	page := &Page{URL: u, Body: body}
	if u.Scheme == url.SchemeViewSource {
		page.Tokens = []html.Token{html.Text(body)}
	} else {
		page.Tokens = html.Lex(body)
	}
	return page, nil
}

// Renderer renders a page onto an image.
type Renderer interface {
	Render(page *Page, target *image.RGBA, scrollTop float64) layout.Result
}

// BowserRenderer lays pages out with a gg-backed measurer and paints them.
// The layout engine is kept between calls so font metrics stay cached.
type BowserRenderer struct {
	measurer *text.Measurer
	engine   *layout.Engine
}

// NewBowserRenderer creates a renderer using the given font paths.
// If fonts is omitted or has no regular face, the system defaults are used.
func NewBowserRenderer(fonts ...text.FontConfig) *BowserRenderer {
	fc := text.DefaultFontConfig()
	if len(fonts) > 0 && fonts[0].Regular != "" {
		fc = fonts[0].Merge(fc)
	}
	m := text.NewMeasurer(fc)
	return &BowserRenderer{measurer: m, engine: layout.NewEngine(m)}
}

// Layout lays page out at the given viewport width.
func (r *BowserRenderer) Layout(page *Page, width float64) layout.Result {
	opts := layout.DefaultOptions()
	opts.Width = width
	return r.engine.Layout(page.Tokens, opts)
}

// Render lays the page out at the target's width and draws the part
// visible at scrollTop.
func (r *BowserRenderer) Render(page *Page, target *image.RGBA, scrollTop float64) layout.Result {
	res := r.Layout(page, float64(target.Bounds().Dx()))
	render.NewRendererForImage(target, r.measurer).Render(res, scrollTop)
	return res
}
