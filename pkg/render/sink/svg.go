package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/slipmap/pkg/fonts"
	"github.com/matzehuels/slipmap/pkg/layout"
)

const svgCSS = `
    .tile { stroke: #ffffff; stroke-width: 1.5; }
    .tile-text { fill: #1a1a1a; text-anchor: middle; dominant-baseline: central; }
    .word { text-anchor: middle; dominant-baseline: central; }
    .title { fill: #333333; text-anchor: middle; font-weight: bold; }`

// titleHeight is the band reserved above the layout when a title is set.
const titleHeight = 36.0

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	palette    Palette
	background string
}

// WithTitle draws title in a band above the layout.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithPalette overrides the fill colors.
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithBackground sets the canvas fill color. Empty means transparent.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

func newSVGRenderer(l layout.Layout, opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: "#ffffff", palette: Tableau10}
	if l.IsWordCloud() {
		r.palette = Viridis
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders l as SVG according to its VizType. Unknown types
// produce an empty canvas.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	switch {
	case l.IsTreemap():
		return TreemapSVG(l, opts...)
	case l.IsWordCloud():
		return WordCloudSVG(l, opts...)
	}
	r := newSVGRenderer(l, opts...)
	var buf bytes.Buffer
	r.open(&buf, l)
	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

// TreemapSVG renders a treemap layout, one rect per node.
func TreemapSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(l, opts...)

	var buf bytes.Buffer
	r.open(&buf, l)
	buf.WriteString(`  <g class="tiles">` + "\n")
	for i, n := range l.Nodes {
		rect := n.Rect
		fmt.Fprintf(&buf, `    <rect class="tile" id="tile-%d" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s</title></rect>`+"\n",
			i, rect.X, rect.Y, rect.W, rect.H, r.palette.colorAt(i), escapeXML(n.Label))
	}
	for _, n := range l.Nodes {
		text, ok := labelTile(n, l.ShowTime)
		if !ok {
			continue
		}
		renderTileText(&buf, n.Rect, text)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

func renderTileText(buf *bytes.Buffer, rect layout.Rect, text tileText) {
	c := rect.Center()
	n := float64(len(text.Lines))
	y0 := c.Y - (n-1)*text.FontSize/2
	fmt.Fprintf(buf, `    <text class="tile-text" x="%.2f" y="%.2f" font-size="%.1f">`, c.X, y0, text.FontSize)
	for i, line := range text.Lines {
		if i == 0 {
			buf.WriteString(escapeXML(line))
			continue
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.1f">%s</tspan>`, c.X, text.FontSize, escapeXML(line))
	}
	buf.WriteString("</text>\n")
}

// WordCloudSVG renders a word-cloud layout, one text element per word.
func WordCloudSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(l, opts...)

	var buf bytes.Buffer
	r.open(&buf, l)
	buf.WriteString(`  <g class="words">` + "\n")
	for _, w := range l.Words {
		fmt.Fprintf(&buf, `    <text class="word" x="%.2f" y="%.2f" font-size="%.1f" fill="%s">%s</text>`+"\n",
			w.Position.X, w.Position.Y, w.FontSize, r.palette.colorFor(w.Label), escapeXML(w.Label))
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

// open writes the root element, styles, background and title, and leaves a
// <g> open that is translated below the title band.
func (r svgRenderer) open(buf *bytes.Buffer, l layout.Layout) {
	offset := 0.0
	if r.title != "" {
		offset = titleHeight
	}
	total := l.Height + offset

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		l.Width, total, l.Width, total, escapeXML(fonts.FallbackFontFamily))
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", svgCSS)
	if r.background != "" {
		fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}
	if r.title != "" {
		fmt.Fprintf(buf, `  <text class="title" x="%.2f" y="%.2f" font-size="18">%s</text>`+"\n",
			l.Width/2, titleHeight*0.65, escapeXML(r.title))
	}
	fmt.Fprintf(buf, `<g transform="translate(0 %.1f)">`+"\n", offset)
}
