package layout

// Weight is the font weight of a run.
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

func (w Weight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// Slant is the font slant of a run.
type Slant int

const (
	SlantRoman Slant = iota
	SlantItalic
)

func (s Slant) String() string {
	if s == SlantItalic {
		return "italic"
	}
	return "roman"
}

// DefaultFontSize is the size text starts at before any <big> or <small>.
const DefaultFontSize = 12

// Font identifies a face at a size. It is comparable and used as a map key.
type Font struct {
	Size   int
	Weight Weight
	Slant  Slant
}

// Metrics describes a piece of text set in a font. Units are whatever the
// Measurer uses, as long as they are consistent.
type Metrics struct {
	Width     float64
	Ascent    float64
	Descent   float64
	Linespace float64
}

// Measurer measures text. Implementations must be safe for concurrent use
// if one Engine is shared between goroutines.
type Measurer interface {
	Measure(text string, f Font) Metrics
}

// Run is a positioned, styled word ready to draw. (X, Y) is the top-left
// corner of the text, not the baseline.
type Run struct {
	X, Y float64
	Text string
	Font Font
}

// Result is the output of a layout pass.
type Result struct {
	Runs   []Run
	Height float64
}

// Options controls the page geometry. HStep is the left and right margin,
// VStep the top margin and the extra gap after a paragraph.
type Options struct {
	Width float64
	HStep float64
	VStep float64
}

func DefaultOptions() Options {
	return Options{Width: 800, HStep: 13, VStep: 18}
}
