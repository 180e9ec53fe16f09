package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/slipmap/pkg/slips"
)

// Rect is an axis-aligned rectangle. X and Y are the top-left corner.
type Rect struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Intersects reports whether r and o share interior area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether o lies within r, allowing eps of slack on each
// edge for floating-point drift.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Inset shrinks r by d on every side. Negative d grows it. The result never
// has a negative width or height.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	if out.W < 0 {
		out.X, out.W = r.X+r.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = r.Y+r.H/2, 0
	}
	return out
}

// Valid reports whether r has finite, positive dimensions.
func (r Rect) Valid() bool {
	return r.W > 0 && r.H > 0 && finite(r.X) && finite(r.Y) && finite(r.W) && finite(r.H)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Item is a labeled value to be laid out.
type Item struct {
	Label string
	Value float64
}

// ItemsFrom converts aggregated durations to layout items, keeping order.
func ItemsFrom(v slips.Values) []Item {
	items := make([]Item, 0, v.Len())
	for label, secs := range v.All() {
		items = append(items, Item{Label: label, Value: float64(secs)})
	}
	return items
}

// SortItems orders items by value descending, breaking ties by label
// ascending. Both layouters place items in this order.
func SortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
}
