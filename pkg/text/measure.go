package text

import (
	"runtime"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"bowser/pkg/layout"
)

// FontConfig holds paths to font files used for text measurement and rendering.
type FontConfig struct {
	Regular    string `toml:"regular"`
	Bold       string `toml:"bold"`
	Italic     string `toml:"italic"`
	BoldItalic string `toml:"bold_italic"`
}

// DefaultFontConfig returns the usual system font locations for the
// current OS.
func DefaultFontConfig() FontConfig {
	switch runtime.GOOS {
	case "darwin":
		dir := "/System/Library/Fonts/Supplemental/"
		return FontConfig{
			Regular:    dir + "Arial.ttf",
			Bold:       dir + "Arial Bold.ttf",
			Italic:     dir + "Arial Italic.ttf",
			BoldItalic: dir + "Arial Bold Italic.ttf",
		}
	case "windows":
		dir := "C:/Windows/Fonts/"
		return FontConfig{
			Regular:    dir + "arial.ttf",
			Bold:       dir + "arialbd.ttf",
			Italic:     dir + "ariali.ttf",
			BoldItalic: dir + "arialbi.ttf",
		}
	}
	dir := "/usr/share/fonts/truetype/liberation/"
	return FontConfig{
		Regular:    dir + "LiberationSans-Regular.ttf",
		Bold:       dir + "LiberationSans-Bold.ttf",
		Italic:     dir + "LiberationSans-Italic.ttf",
		BoldItalic: dir + "LiberationSans-BoldItalic.ttf",
	}
}

// FontPath returns the font path for the given style combination.
func (fc FontConfig) FontPath(bold, italic bool) string {
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

// Merge fills empty paths in fc from other.
func (fc FontConfig) Merge(other FontConfig) FontConfig {
	if fc.Regular == "" {
		fc.Regular = other.Regular
	}
	if fc.Bold == "" {
		fc.Bold = other.Bold
	}
	if fc.Italic == "" {
		fc.Italic = other.Italic
	}
	if fc.BoldItalic == "" {
		fc.BoldItalic = other.BoldItalic
	}
	return fc
}

// Measurer measures text with TrueType faces loaded through gg. Faces are
// loaded once per layout.Font. If a font file cannot be loaded the fixed
// 7x13 bitmap face is used instead, so measurement never fails.
type Measurer struct {
	fonts FontConfig

	mu    sync.Mutex
	faces map[layout.Font]font.Face
}

func NewMeasurer(fonts FontConfig) *Measurer {
	return &Measurer{fonts: fonts, faces: make(map[layout.Font]font.Face)}
}

// WithFace calls fn with the face for f. Faces are not safe for concurrent
// use, so fn runs under the measurer's lock and must not keep the face.
func (m *Measurer) WithFace(f layout.Font, fn func(font.Face)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.face(f))
}

func (m *Measurer) face(f layout.Font) font.Face {
	if face, ok := m.faces[f]; ok {
		return face
	}
	path := m.fonts.FontPath(f.Weight == layout.WeightBold, f.Slant == layout.SlantItalic)
	face, err := gg.LoadFontFace(path, float64(f.Size))
	if err != nil {
		face = basicfont.Face7x13
	}
	m.faces[f] = face
	return face
}

// Measure implements layout.Measurer.
func (m *Measurer) Measure(s string, f layout.Font) layout.Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	face := m.face(f)
	metrics := face.Metrics()
	return layout.Metrics{
		Width:     toFloat(font.MeasureString(face, s)),
		Ascent:    toFloat(metrics.Ascent),
		Descent:   toFloat(metrics.Descent),
		Linespace: toFloat(metrics.Height),
	}
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
