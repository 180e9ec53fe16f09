// Package wordcloud places labels on a canvas with font sizes proportional
// to their values.
//
// Labels are placed largest first. Each one starts at the canvas center and
// walks outward along an Archimedean spiral, stretched to the canvas aspect
// ratio, until its bounding box fits inside the canvas without overlapping
// any word placed before it. Labels that find no position within the step
// cap are dropped and reported in [Result.Dropped]; the layout itself still
// succeeds.
//
// Bounding boxes come from a [Metrics] provider. [CharMetrics] estimates
// them from character counts; pkg/fonts supplies a TrueType-backed provider
// for output that must match rendered glyphs.
//
// # Usage
//
//	res, err := wordcloud.Layout(values, layout.Rect{W: 800, H: 400},
//	    wordcloud.WithFontRange(12, 72),
//	    wordcloud.WithPadding(2),
//	)
//	if len(res.Dropped) > 0 {
//	    // retry with a larger canvas or smaller fonts
//	}
package wordcloud
