// Package sink provides output format renderers for slipmap layouts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Layout] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics, one rect or text element per label
//   - PNG: Raster image drawn with fogleman/gg and the embedded Go font
//   - JSON: The layout itself, for caching and round-trip rendering
//
// # SVG Output
//
// [RenderSVG] dispatches on the layout's VizType to [TreemapSVG] or
// [WordCloudSVG]:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithTitle("week 12"),
//	    sink.WithPalette(sink.Tableau10),
//	)
//
// Treemap tiles carry their label, truncated to fit, and the "XhYm" total
// when the layout has ShowTime set.
//
// # PNG Output
//
// [RenderPNG] rasterizes in-process, no external tools required:
//
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//
// # Multiple Formats
//
// [Render] produces several formats at once, keyed by format name:
//
//	out, err := sink.Render(l, []string{sink.FormatSVG, sink.FormatPNG})
//
// [layout.Layout]: github.com/matzehuels/slipmap/pkg/layout.Layout
package sink
