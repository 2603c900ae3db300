package layout

import (
	"sync"
	"testing"

	"bowser/pkg/html"
)

// fixedMeasurer gives every character 10 units of width at size 12, scaled
// linearly with size. Ascent and descent are 3/4 and 1/4 of the size.
type fixedMeasurer struct {
	mu    sync.Mutex
	calls map[string]int
}

func (m *fixedMeasurer) Measure(text string, f Font) Metrics {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[text]++
	m.mu.Unlock()

	size := float64(f.Size)
	return Metrics{
		Width:     float64(len(text)) * 10 * size / 12,
		Ascent:    size * 0.75,
		Descent:   size * 0.25,
		Linespace: size * 1.2,
	}
}

func layoutString(t *testing.T, body string, opts Options) Result {
	t.Helper()
	return NewEngine(&fixedMeasurer{}).Layout(html.Lex(body), opts)
}

func TestLayout_EmptyInput(t *testing.T) {
	opts := DefaultOptions()
	res := NewEngine(&fixedMeasurer{}).Layout(nil, opts)
	if len(res.Runs) != 0 {
		t.Errorf("expected no runs, got %d", len(res.Runs))
	}
	if res.Height != opts.VStep {
		t.Errorf("expected height %v, got %v", opts.VStep, res.Height)
	}
}

func TestLayout_SingleLine(t *testing.T) {
	opts := Options{Width: 800, HStep: 13, VStep: 18}
	res := layoutString(t, "Hello world", opts)
	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	// ascent 9, descent 3 at size 12.
	baseline := 18 + 1.25*9
	if res.Runs[0].X != 13 || res.Runs[0].Y != baseline-9 {
		t.Errorf("unexpected first run position (%v, %v)", res.Runs[0].X, res.Runs[0].Y)
	}
	// "Hello" is 50 wide, plus a 10-unit space.
	if res.Runs[1].X != 73 {
		t.Errorf("expected second run at x=73, got %v", res.Runs[1].X)
	}
	if res.Height != baseline+1.25*3 {
		t.Errorf("expected height %v, got %v", baseline+1.25*3, res.Height)
	}
}

func TestLayout_WordWrap(t *testing.T) {
	// Right edge at 130: two 50-unit words and a 10-unit space fit
	// starting from x=10, a third does not.
	opts := Options{Width: 140, HStep: 10, VStep: 18}
	res := layoutString(t, "aaaaa bbbbb ccccc", opts)
	if len(res.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(res.Runs))
	}
	first, second, third := res.Runs[0], res.Runs[1], res.Runs[2]
	if first.Y != second.Y {
		t.Errorf("expected first two words on one line, got y=%v and y=%v", first.Y, second.Y)
	}
	if third.X != opts.HStep {
		t.Errorf("expected third word at left margin, got x=%v", third.X)
	}
	// Next line top = baseline + 1.25*descent; its baseline adds 1.25*ascent.
	step := 1.25*3 + 1.25*9
	if third.Y-first.Y != step {
		t.Errorf("expected vertical step %v, got %v", step, third.Y-first.Y)
	}
}

func TestLayout_OversizedWordNotSplit(t *testing.T) {
	opts := Options{Width: 60, HStep: 10, VStep: 18}
	res := layoutString(t, "short enormouslylongword x", opts)
	if len(res.Runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(res.Runs))
	}
	if res.Runs[1].Text != "enormouslylongword" {
		t.Errorf("expected whole word, got %q", res.Runs[1].Text)
	}
	if res.Runs[1].X != opts.HStep {
		t.Errorf("expected long word on its own line at margin, got x=%v", res.Runs[1].X)
	}
	if res.Runs[2].Y <= res.Runs[1].Y {
		t.Error("expected word after the long word to wrap")
	}
}

func TestLayout_BoldSharesBaseline(t *testing.T) {
	tokens := []html.Token{html.Tag("b"), html.Text("x"), html.Tag("/b"), html.Text("y")}
	res := NewEngine(&fixedMeasurer{}).Layout(tokens, DefaultOptions())
	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	x, y := res.Runs[0], res.Runs[1]
	if x.Font.Weight != WeightBold {
		t.Errorf("expected x bold, got %v", x.Font.Weight)
	}
	if y.Font.Weight != WeightNormal {
		t.Errorf("expected y normal, got %v", y.Font.Weight)
	}
	if x.Y != y.Y {
		t.Errorf("expected shared baseline, got %v and %v", x.Y, y.Y)
	}
}

func TestLayout_StyleTags(t *testing.T) {
	res := layoutString(t, "<i>a</i> b <small>c</small> <big>d</big> e", DefaultOptions())
	want := []Font{
		{Size: 12, Slant: SlantItalic},
		{Size: 12},
		{Size: 10},
		{Size: 16},
		{Size: 12},
	}
	if len(res.Runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(res.Runs))
	}
	for i, f := range want {
		if res.Runs[i].Font != f {
			t.Errorf("run %d (%q): expected font %+v, got %+v", i, res.Runs[i].Text, f, res.Runs[i].Font)
		}
	}
}

func TestLayout_MixedSizesAlignOnBaseline(t *testing.T) {
	res := layoutString(t, "a <big>B</big>", DefaultOptions())
	small, big := res.Runs[0], res.Runs[1]
	// Baselines match: y + ascent is equal for both.
	if small.Y+9 != big.Y+12 {
		t.Errorf("expected equal baselines, got %v and %v", small.Y+9, big.Y+12)
	}
	// The line's baseline comes from the largest ascent.
	if big.Y != 18+1.25*12-12 {
		t.Errorf("unexpected big run y %v", big.Y)
	}
}

func TestLayout_LineBreakAndParagraph(t *testing.T) {
	opts := DefaultOptions()
	br := layoutString(t, "a<br>b", opts)
	p := layoutString(t, "a</p>b", opts)
	if len(br.Runs) != 2 || len(p.Runs) != 2 {
		t.Fatalf("expected 2 runs each, got %d and %d", len(br.Runs), len(p.Runs))
	}
	if br.Runs[1].X != opts.HStep {
		t.Errorf("expected <br> to return to the margin, got x=%v", br.Runs[1].X)
	}
	gapBR := br.Runs[1].Y - br.Runs[0].Y
	gapP := p.Runs[1].Y - p.Runs[0].Y
	if gapP-gapBR != opts.VStep {
		t.Errorf("expected </p> to add %v over <br>, got %v", opts.VStep, gapP-gapBR)
	}
}

func TestLayout_EmptyFlushIsNoop(t *testing.T) {
	opts := DefaultOptions()
	res := layoutString(t, "<br><br><br>", opts)
	if len(res.Runs) != 0 || res.Height != opts.VStep {
		t.Errorf("expected nothing laid out, got %d runs height %v", len(res.Runs), res.Height)
	}
}

func TestLayout_UnknownTagsIgnored(t *testing.T) {
	res := layoutString(t, `<div class="x">a</div><sup>b</sup>`, DefaultOptions())
	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	for _, r := range res.Runs {
		if r.Font != (Font{Size: DefaultFontSize}) {
			t.Errorf("expected default font for %q, got %+v", r.Text, r.Font)
		}
	}
}

func TestLayout_UnbalancedSizeTagsClamp(t *testing.T) {
	res := layoutString(t, "</big></big></big></big>tiny", DefaultOptions())
	if len(res.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(res.Runs))
	}
	if res.Runs[0].Font.Size != 1 {
		t.Errorf("expected size clamped to 1, got %d", res.Runs[0].Font.Size)
	}
}

func TestLayout_FontMetricsMemoized(t *testing.T) {
	m := &fixedMeasurer{}
	e := NewEngine(m)
	tokens := html.Lex("one two three <b>four five</b> six")
	e.Layout(tokens, DefaultOptions())
	e.Layout(tokens, DefaultOptions())

	if e.CachedFonts() != 2 {
		t.Errorf("expected 2 cached fonts, got %d", e.CachedFonts())
	}
	if m.calls[" "] != 2 {
		t.Errorf("expected one space measurement per font, got %d", m.calls[" "])
	}
}

func TestLayout_StyleResetBetweenPasses(t *testing.T) {
	e := NewEngine(&fixedMeasurer{})
	e.Layout(html.Lex("<b><i><big>unclosed"), DefaultOptions())
	res := e.Layout(html.Lex("plain"), DefaultOptions())
	if res.Runs[0].Font != (Font{Size: DefaultFontSize}) {
		t.Errorf("expected fresh style state, got %+v", res.Runs[0].Font)
	}
}

func TestWeightSlantString(t *testing.T) {
	if WeightBold.String() != "bold" || WeightNormal.String() != "normal" {
		t.Error("unexpected weight names")
	}
	if SlantItalic.String() != "italic" || SlantRoman.String() != "roman" {
		t.Error("unexpected slant names")
	}
}
