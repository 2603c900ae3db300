package layout

import (
	"strings"
	"sync"

	"bowser/pkg/html"
)

// lineSpacing stretches ascent and descent to leave a gap between lines.
const lineSpacing = 1.25

// Engine lays out token streams. Font-level metrics are memoized per Font
// for the engine's lifetime, so reuse one Engine across relayouts.
type Engine struct {
	measurer Measurer

	mu    sync.Mutex
	fonts map[Font]Metrics
}

func NewEngine(m Measurer) *Engine {
	return &Engine{measurer: m, fonts: make(map[Font]Metrics)}
}

// fontMetrics returns the ascent, descent and linespace of f, with Width set
// to the width of one space.
func (e *Engine) fontMetrics(f Font) Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.fonts[f]; ok {
		return m
	}
	m := e.measurer.Measure(" ", f)
	e.fonts[f] = m
	return m
}

// CachedFonts returns how many distinct fonts have been measured.
func (e *Engine) CachedFonts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fonts)
}

// Layout flows tokens into lines. It never fails; any token stream yields
// some layout, possibly empty.
func (e *Engine) Layout(tokens []html.Token, opts Options) Result {
	l := &lineLayout{
		engine: e,
		opts:   opts,
		x:      opts.HStep,
		y:      opts.VStep,
		size:   DefaultFontSize,
	}
	for _, tok := range tokens {
		l.token(tok)
	}
	l.flush()
	return Result{Runs: l.runs, Height: l.y}
}

type lineItem struct {
	x    float64
	text string
	font Font
}

// lineLayout is the cursor state of one layout pass.
type lineLayout struct {
	engine *Engine
	opts   Options

	x, y   float64
	size   int
	weight Weight
	slant  Slant

	line []lineItem
	runs []Run
}

func (l *lineLayout) token(tok html.Token) {
	if tok.Type == html.TokenText {
		for _, word := range strings.Fields(tok.Data) {
			l.word(word)
		}
		return
	}
	switch tok.Data {
	case "i":
		l.slant = SlantItalic
	case "/i":
		l.slant = SlantRoman
	case "b":
		l.weight = WeightBold
	case "/b":
		l.weight = WeightNormal
	case "small":
		l.size -= 2
	case "/small":
		l.size += 2
	case "big":
		l.size += 4
	case "/big":
		l.size -= 4
	case "br":
		l.flush()
	case "/p":
		l.flush()
		l.y += l.opts.VStep
	}
}

// font returns the current font. Unbalanced size tags can drive the cursor
// size to zero or below; measurement never sees less than 1.
func (l *lineLayout) font() Font {
	size := l.size
	if size < 1 {
		size = 1
	}
	return Font{Size: size, Weight: l.weight, Slant: l.slant}
}

// word places one word, wrapping first if it would cross the right margin.
// A word wider than the line is still placed whole.
func (l *lineLayout) word(word string) {
	f := l.font()
	w := l.engine.measurer.Measure(word, f).Width
	if l.x+w > l.opts.Width-l.opts.HStep {
		l.flush()
	}
	l.line = append(l.line, lineItem{x: l.x, text: word, font: f})
	l.x += w + l.engine.fontMetrics(f).Width
}

// flush turns the pending line into runs sharing one baseline and moves the
// cursor below it.
func (l *lineLayout) flush() {
	if len(l.line) == 0 {
		return
	}
	var maxAscent, maxDescent float64
	for _, item := range l.line {
		m := l.engine.fontMetrics(item.font)
		maxAscent = max(maxAscent, m.Ascent)
		maxDescent = max(maxDescent, m.Descent)
	}

	baseline := l.y + lineSpacing*maxAscent
	for _, item := range l.line {
		ascent := l.engine.fontMetrics(item.font).Ascent
		l.runs = append(l.runs, Run{X: item.x, Y: baseline - ascent, Text: item.text, Font: item.font})
	}
	l.y = baseline + lineSpacing*maxDescent
	l.x = l.opts.HStep
	l.line = l.line[:0]
}
