package render

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"bowser/pkg/layout"
	"bowser/pkg/text"
)

// Visible returns the runs whose top edge lies within the viewport
// [top, top+height], widened by margin on both sides so lines straddling an
// edge are kept.
func Visible(runs []layout.Run, top, height, margin float64) []layout.Run {
	var out []layout.Run
	for _, run := range runs {
		if run.Y < top-margin || run.Y > top+height+margin {
			continue
		}
		out = append(out, run)
	}
	return out
}

// Renderer paints display runs onto an image with gg.
type Renderer struct {
	context  *gg.Context
	measurer *text.Measurer
	margin   float64
}

func NewRenderer(width, height int, m *text.Measurer) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), measurer: m, margin: layout.DefaultOptions().VStep}
}

// NewRendererForImage draws directly into target.
func NewRendererForImage(target *image.RGBA, m *text.Measurer) *Renderer {
	return &Renderer{context: gg.NewContextForRGBA(target), measurer: m, margin: layout.DefaultOptions().VStep}
}

// Render clears the canvas and draws the runs visible when the page is
// scrolled down by scrollTop.
func (r *Renderer) Render(res layout.Result, scrollTop float64) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.context.SetRGB(0, 0, 0)

	height := float64(r.context.Height())
	for _, run := range Visible(res.Runs, scrollTop, height, r.margin) {
		r.measurer.WithFace(run.Font, func(face font.Face) {
			r.context.SetFontFace(face)
			// Runs are positioned by their top edge; gg draws on the baseline.
			ascent := float64(face.Metrics().Ascent) / 64
			r.context.DrawString(run.Text, run.X, run.Y-scrollTop+ascent)
		})
	}
}

func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}
