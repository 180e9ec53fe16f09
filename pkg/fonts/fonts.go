// Package fonts provides the embedded font used for measuring and rendering
// labels.
//
// The font is Go Regular from golang.org/x/image/font/gofont, compiled into
// the binary, so PNG output and word-cloud metrics do not depend on fonts
// installed on the host. [FaceMetrics] measures labels with the same glyph
// advances the PNG renderer draws with, so word-cloud boxes match the pixels.
package fonts

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family name written into SVG output.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers without the Go font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// DPI at which faces are rasterized. At 72 DPI one point equals one pixel.
const DPI = 72

var (
	parsed     *truetype.Font
	parseErr   error
	parsedOnce sync.Once
)

// Regular returns the parsed Go Regular font.
func Regular() (*truetype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parseErr = truetype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// TTF returns the raw font data.
func TTF() []byte { return goregular.TTF }

// Face returns a new face at size points. Faces hold glyph caches and are
// not safe for concurrent use; callers own the returned face.
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: DPI, Hinting: font.HintingNone}), nil
}

// FaceMetrics measures text with the embedded font. It satisfies
// wordcloud.Metrics and is safe for concurrent use.
type FaceMetrics struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFaceMetrics returns a FaceMetrics with an empty face cache.
func NewFaceMetrics() *FaceMetrics {
	return &FaceMetrics{faces: make(map[float64]font.Face)}
}

// Measure returns the advance width and line height of label at fontSize.
// If the font cannot be loaded it falls back to a 0.55em-per-rune estimate.
func (m *FaceMetrics) Measure(label string, fontSize float64) (w, h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, ok := m.faces[fontSize]
	if !ok {
		var err error
		face, err = Face(fontSize)
		if err != nil {
			return float64(max(1, len([]rune(label)))) * 0.55 * fontSize, fontSize
		}
		if m.faces == nil {
			m.faces = make(map[float64]font.Face)
		}
		m.faces[fontSize] = face
	}

	adv := font.MeasureString(face, label)
	met := face.Metrics()
	w = math.Ceil(fixedToFloat(adv))
	h = math.Ceil(fixedToFloat(met.Ascent + met.Descent))
	return w, h
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
