package treemap

import (
	"math"
	"slices"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/slips"
)

// Layout tiles root with one node per label in values.
func Layout(values slips.Values, root layout.Rect) ([]layout.TreemapNode, error) {
	return LayoutItems(layout.ItemsFrom(values), root)
}

// LayoutItems tiles root with one node per item.
//
// Nodes are returned in placement order: value descending, ties by label.
// An empty input yields no nodes and no error. A root without positive,
// finite dimensions, or an item whose value is not a positive finite
// number, fails with LAYOUT_ERROR.
func LayoutItems(items []layout.Item, root layout.Rect) ([]layout.TreemapNode, error) {
	if !root.Valid() {
		return nil, errors.New(errors.ErrCodeLayout, "treemap root must have positive size, got %gx%g", root.W, root.H)
	}
	if len(items) == 0 {
		return []layout.TreemapNode{}, nil
	}

	var total float64
	for _, it := range items {
		if !(it.Value > 0) || math.IsInf(it.Value, 0) {
			return nil, errors.New(errors.ErrCodeLayout, "treemap value for %q must be positive, got %g", it.Label, it.Value)
		}
		total += it.Value
	}

	sorted := slices.Clone(items)
	layout.SortItems(sorted)

	scale := root.Area() / total
	areas := make([]float64, len(sorted))
	for i, it := range sorted {
		areas[i] = it.Value * scale
	}

	s := squarifier{rem: root, nodes: make([]layout.TreemapNode, 0, len(sorted))}
	for start := 0; start < len(sorted); {
		end := s.rowEnd(areas, start)
		s.placeStrip(sorted[start:end], areas[start:end], end == len(sorted))
		start = end
	}
	return s.nodes, nil
}

type squarifier struct {
	rem   layout.Rect
	nodes []layout.TreemapNode
}

// rowEnd grows a row from start while the worst aspect ratio does not get
// worse, and returns the exclusive end index.
func (s *squarifier) rowEnd(areas []float64, start int) int {
	side := min(s.rem.W, s.rem.H)
	sum := areas[start]
	best := worst(sum, areas[start], areas[start], side)
	end := start + 1
	for end < len(areas) {
		next := sum + areas[end]
		// Areas are sorted descending, so the row max is its first element
		// and the row min is the candidate.
		w := worst(next, areas[start], areas[end], side)
		if w > best {
			break
		}
		sum, best = next, w
		end++
	}
	return end
}

// worst is the largest aspect ratio in a row of total area sum laid along a
// side of the given length.
func worst(sum, maxArea, minArea, side float64) float64 {
	s2, sum2 := side*side, sum*sum
	return max(s2*maxArea/sum2, sum2/(s2*minArea))
}

// placeStrip lays a row along the shorter side of the remaining rectangle
// and shrinks the remainder. The last tile of a strip, and the last strip,
// are snapped to the edges.
func (s *squarifier) placeStrip(row []layout.Item, areas []float64, last bool) {
	var sum float64
	for _, a := range areas {
		sum += a
	}
	rem := s.rem

	if rem.W >= rem.H {
		thickness := min(sum/rem.H, rem.W)
		if last {
			thickness = rem.W
		}
		y := rem.Y
		for i, it := range row {
			h := rem.H * (areas[i] / sum)
			if i == len(row)-1 {
				h = rem.Bottom() - y
			}
			s.emit(it, layout.Rect{X: rem.X, Y: y, W: thickness, H: h})
			y += h
		}
		s.rem = layout.Rect{X: rem.X + thickness, Y: rem.Y, W: rem.W - thickness, H: rem.H}
		return
	}

	thickness := min(sum/rem.W, rem.H)
	if last {
		thickness = rem.H
	}
	x := rem.X
	for i, it := range row {
		w := rem.W * (areas[i] / sum)
		if i == len(row)-1 {
			w = rem.Right() - x
		}
		s.emit(it, layout.Rect{X: x, Y: rem.Y, W: w, H: thickness})
		x += w
	}
	s.rem = layout.Rect{X: rem.X, Y: rem.Y + thickness, W: rem.W, H: rem.H - thickness}
}

func (s *squarifier) emit(it layout.Item, r layout.Rect) {
	s.nodes = append(s.nodes, layout.TreemapNode{Label: it.Label, Value: it.Value, Rect: r})
}
