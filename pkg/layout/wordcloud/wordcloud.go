package wordcloud

import (
	"math"
	"slices"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/slips"
)

// Result is the outcome of a word-cloud layout.
type Result struct {
	Placements []layout.WordPlacement
	Dropped    []string // labels that found no free position, in placement order
}

// Layout places one word per label in values on canvas.
func Layout(values slips.Values, canvas layout.Rect, opts ...Option) (Result, error) {
	return LayoutItems(layout.ItemsFrom(values), canvas, opts...)
}

// LayoutItems places one word per item on canvas.
//
// Placements are returned largest first (ties by label). The canvas must
// have positive finite dimensions (LAYOUT_ERROR); item values must be
// positive (LAYOUT_ERROR); option ranges are checked by Options.Validate
// (INVALID_INPUT).
func LayoutItems(items []layout.Item, canvas layout.Rect, opts ...Option) (Result, error) {
	if !canvas.Valid() {
		return Result{}, errors.New(errors.ErrCodeLayout, "word cloud canvas must have positive size, got %gx%g", canvas.W, canvas.H)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return Result{}, err
	}
	o.Scale, _ = ParseScale(string(o.Scale))
	for _, it := range items {
		if !(it.Value > 0) || math.IsInf(it.Value, 0) {
			return Result{}, errors.New(errors.ErrCodeLayout, "word cloud value for %q must be positive, got %g", it.Label, it.Value)
		}
	}

	sorted := slices.Clone(items)
	layout.SortItems(sorted)

	p := placer{canvas: canvas, opts: o}
	p.initSpiral()
	sizer := newFontSizer(sorted, o)

	res := Result{Placements: make([]layout.WordPlacement, 0, len(sorted))}
	for _, it := range sorted {
		size := sizer.size(it.Value)
		w, h := o.Metrics.Measure(it.Label, size)
		box, ok := p.place(w, h)
		if !ok {
			res.Dropped = append(res.Dropped, it.Label)
			continue
		}
		res.Placements = append(res.Placements, layout.WordPlacement{
			Label:    it.Label,
			Value:    it.Value,
			FontSize: size,
			Position: box.Center(),
			Box:      box,
		})
	}
	return res, nil
}

// fontSizer interpolates font sizes between the option bounds.
type fontSizer struct {
	lo, hi     float64
	minV, maxV float64
	scale      Scale
}

func newFontSizer(items []layout.Item, o Options) fontSizer {
	s := fontSizer{lo: o.MinFontSize, hi: o.MaxFontSize, scale: o.Scale}
	if len(items) == 0 {
		return s
	}
	// items are sorted descending
	s.maxV, s.minV = items[0].Value, items[len(items)-1].Value
	return s
}

func (s fontSizer) size(v float64) float64 {
	if s.maxV == s.minV {
		return s.hi
	}
	t := (v - s.minV) / (s.maxV - s.minV)
	if s.scale == ScaleSqrt {
		t = math.Sqrt(t)
	}
	return s.lo + t*(s.hi-s.lo)
}

// placer runs the spiral search against the boxes placed so far.
type placer struct {
	canvas layout.Rect
	opts   Options
	placed []layout.Rect

	center    layout.Point
	ax, ay    float64 // elliptical stretch toward the longer canvas side
	maxRadius float64 // beyond this no candidate center lies on the canvas
}

func (p *placer) initSpiral() {
	p.center = p.canvas.Center()
	p.ax = max(1, p.canvas.W/p.canvas.H)
	p.ay = max(1, p.canvas.H/p.canvas.W)
	p.maxRadius = math.Hypot(p.canvas.W, p.canvas.H) / 2
}

// place finds a box of size w x h, centered on a spiral point, that lies
// inside the canvas and keeps Padding clear of every placed box.
func (p *placer) place(w, h float64) (layout.Rect, bool) {
	if w > p.canvas.W || h > p.canvas.H {
		return layout.Rect{}, false
	}
	for i := 0; i < p.opts.MaxSteps; i++ {
		theta := float64(i) * p.opts.AngleStep
		r := p.opts.RadiusStep * theta
		if r > p.maxRadius {
			break
		}
		cx := p.center.X + p.ax*r*math.Cos(theta)
		cy := p.center.Y + p.ay*r*math.Sin(theta)
		box := layout.Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
		if !p.canvas.Contains(box, 0) || p.collides(box) {
			continue
		}
		p.placed = append(p.placed, box)
		return box, true
	}
	return layout.Rect{}, false
}

func (p *placer) collides(box layout.Rect) bool {
	probe := box.Inset(-p.opts.Padding)
	for _, b := range p.placed {
		if probe.Intersects(b) {
			return true
		}
	}
	return false
}
