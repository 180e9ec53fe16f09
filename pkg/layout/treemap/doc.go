// Package treemap lays out labeled values as a squarified treemap.
//
// The algorithm follows Bruls, Huizing and van Wijk: items are sorted by
// value, then packed greedily into strips along the shorter side of the
// remaining rectangle, closing a strip as soon as adding another item would
// make its worst aspect ratio worse. Each tile's area is proportional to its
// value and the tiles partition the root rectangle exactly.
//
// # Usage
//
//	nodes, err := treemap.Layout(values, layout.Rect{W: 1000, H: 800})
//
// [LayoutItems] accepts arbitrary [layout.Item] values for callers that do
// not start from aggregated durations.
package treemap
