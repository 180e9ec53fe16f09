package wordcloud

import "unicode/utf8"

// Metrics measures the bounding box of a label rendered at fontSize.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Measure(label string, fontSize float64) (w, h float64)
}

// Default ratios for CharMetrics, relative to the font size.
const (
	DefaultCharWidth  = 0.55
	DefaultLineHeight = 1.0
)

// CharMetrics estimates text extents from the rune count, treating every
// glyph as CharWidth*fontSize wide. Zero ratios fall back to the defaults.
type CharMetrics struct {
	CharWidth  float64
	LineHeight float64
}

// Measure implements Metrics.
func (m CharMetrics) Measure(label string, fontSize float64) (w, h float64) {
	cw, lh := m.CharWidth, m.LineHeight
	if cw <= 0 {
		cw = DefaultCharWidth
	}
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	n := max(1, utf8.RuneCountInString(label))
	return float64(n) * cw * fontSize, lh * fontSize
}
