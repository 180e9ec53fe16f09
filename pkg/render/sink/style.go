package sink

import (
	"bytes"
	"encoding/xml"
	"hash/fnv"
	"unicode/utf8"

	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/slips"
)

// Palette is a cycle of fill colors in "#rrggbb" form.
type Palette []string

// Tableau10 is the default categorical palette.
var Tableau10 = Palette{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Viridis samples the viridis colormap, suited to word clouds on white.
var Viridis = Palette{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b",
}

// colorAt returns the i-th color, cycling.
func (p Palette) colorAt(i int) string {
	if len(p) == 0 {
		return "#888888"
	}
	return p[i%len(p)]
}

// colorFor picks a stable color for label independent of its position.
func (p Palette) colorFor(label string) string {
	if len(p) == 0 {
		return "#888888"
	}
	h := fnv.New32a()
	h.Write([]byte(label))
	return p[int(h.Sum32()%uint32(len(p)))]
}

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 28.0
)

// tileFontSize fits lines of at most textLen runes into a w x h tile.
func tileFontSize(w, h float64, textLen, lines int) float64 {
	n := max(1, textLen)
	byHeight := h * fontHeightRatio / float64(max(1, lines))
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// truncateLabel shortens label with ".." so it fits availW at fontSize.
func truncateLabel(label string, availW, fontSize float64) string {
	maxChars := int(availW * fontWidthRatio / (fontSize * fontCharWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	if utf8.RuneCountInString(label) <= maxChars {
		return label
	}
	r := []rune(label)
	return string(r[:maxChars-2]) + ".."
}

// tileFits reports whether a tile can hold any legible text at all.
func tileFits(w, h float64) bool {
	return w >= fontSizeMin*fontCharWidth*3 && h >= fontSizeMin
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// tileText is the label drawn inside one treemap tile.
type tileText struct {
	Lines    []string
	FontSize float64
}

// labelTile lays out the text for a treemap tile. The second result is
// false when the tile is too small for any label.
func labelTile(n layout.TreemapNode, showTime bool) (tileText, bool) {
	r := n.Rect
	if !tileFits(r.W, r.H) {
		return tileText{}, false
	}
	lines := []string{n.Label}
	if showTime {
		lines = append(lines, slips.FormatDuration(int64(n.Value)))
	}
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	size := tileFontSize(r.W, r.H, longest, len(lines))
	if size*float64(len(lines)) > r.H {
		lines = lines[:1]
		size = tileFontSize(r.W, r.H, utf8.RuneCountInString(n.Label), 1)
	}
	for i, l := range lines {
		lines[i] = truncateLabel(l, r.W, size)
	}
	return tileText{Lines: lines, FontSize: size}, true
}
