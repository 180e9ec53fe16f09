// Package render groups the output stages that turn a computed layout into
// files.
//
// The only renderer is [sink], which draws treemaps and word clouds as SVG
// (hand-built markup), PNG (rasterized in-process with gg) or JSON (the
// layout itself).
//
//	artifacts, err := sink.Render(l, []string{"svg", "png"}, sink.Options{Title: "Week 10"})
//
// [sink]: github.com/matzehuels/slipmap/pkg/render/sink
package render
