// Package layout provides the geometry and serialization types shared by the
// treemap and word-cloud layouters.
//
// This package defines the wire format for slipmap layouts, used for JSON
// files, API responses, and caching. The layouters themselves live in the
// sub-packages [github.com/matzehuels/slipmap/pkg/layout/treemap] and
// [github.com/matzehuels/slipmap/pkg/layout/wordcloud]; renderers in
// pkg/render/sink consume the [Layout] value.
//
// # Core Types
//
//   - [Rect]: axis-aligned rectangle with geometry helpers
//   - [Item]: a labeled positive value, the input to both layouters
//   - [TreemapNode]: one tile of a treemap
//   - [WordPlacement]: one positioned word of a word cloud
//   - [Layout]: unified format for either visualization
//
// # Constants
//
//	layout.VizTypeTreemap    // "treemap"
//	layout.VizTypeWordCloud  // "wordcloud"
//
// # Layout Serialization
//
// Layouts are discriminated by VizType:
//
//	l, _ := layout.ReadLayoutFile("tasks.json")
//	if l.IsTreemap() {
//	    // Use l.Nodes
//	} else {
//	    // Use l.Words; l.Dropped lists words that did not fit
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package layout
