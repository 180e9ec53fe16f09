package treemap

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/slips"
)

func TestLayoutSingleItem(t *testing.T) {
	root := layout.Rect{X: 0, Y: 0, W: 100, H: 50}
	values := slips.NewValues(slips.Entry{Label: "only", Seconds: 42})

	nodes, err := Layout(values, root)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("len(nodes) = %d, want 1", len(nodes))
	}
	if nodes[0].Rect != root {
		t.Errorf("Rect = %v, want %v", nodes[0].Rect, root)
	}
	if nodes[0].Label != "only" || nodes[0].Value != 42 {
		t.Errorf("node = %+v", nodes[0])
	}
}

func TestLayoutTwoEqualItems(t *testing.T) {
	root := layout.Rect{W: 100, H: 100}
	nodes, err := LayoutItems([]layout.Item{{"b", 7}, {"a", 7}}, root)
	if err != nil {
		t.Fatalf("LayoutItems: %v", err)
	}

	want := []layout.TreemapNode{
		{Label: "a", Value: 7, Rect: layout.Rect{X: 0, Y: 0, W: 100, H: 50}},
		{Label: "b", Value: 7, Rect: layout.Rect{X: 0, Y: 50, W: 100, H: 50}},
	}
	if len(nodes) != len(want) {
		t.Fatalf("len(nodes) = %d, want %d", len(nodes), len(want))
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Errorf("nodes[%d] = %+v, want %+v", i, nodes[i], want[i])
		}
	}
}

func TestLayoutKnownSquarify(t *testing.T) {
	// The classic example from the squarified treemap paper on a 6x4 canvas.
	items := []layout.Item{{"a", 6}, {"b", 6}, {"c", 4}, {"d", 3}, {"e", 2}, {"f", 2}, {"g", 1}}
	nodes, err := LayoutItems(items, layout.Rect{W: 6, H: 4})
	if err != nil {
		t.Fatalf("LayoutItems: %v", err)
	}

	// First strip holds the two 6s stacked on the left, 3 wide.
	wantFirst := []layout.Rect{{X: 0, Y: 0, W: 3, H: 2}, {X: 0, Y: 2, W: 3, H: 2}}
	for i, r := range wantFirst {
		assert.InDelta(t, r.X, nodes[i].Rect.X, 1e-9)
		assert.InDelta(t, r.Y, nodes[i].Rect.Y, 1e-9)
		assert.InDelta(t, r.W, nodes[i].Rect.W, 1e-9)
		assert.InDelta(t, r.H, nodes[i].Rect.H, 1e-9)
	}
	assertPartition(t, nodes, layout.Rect{W: 6, H: 4}, "paper example")
}

func TestLayoutOrder(t *testing.T) {
	nodes, err := LayoutItems([]layout.Item{{"small", 1}, {"big", 10}, {"mid-b", 5}, {"mid-a", 5}}, layout.Rect{W: 40, H: 30})
	require.NoError(t, err)

	var labels []string
	for _, n := range nodes {
		labels = append(labels, n.Label)
	}
	assert.Equal(t, []string{"big", "mid-a", "mid-b", "small"}, labels)
}

func TestLayoutEmpty(t *testing.T) {
	nodes, err := Layout(slips.Values{}, layout.Rect{W: 10, H: 10})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("len(nodes) = %d, want 0", len(nodes))
	}
}

func TestLayoutErrors(t *testing.T) {
	ok := []layout.Item{{"a", 1}}
	tests := []struct {
		name  string
		items []layout.Item
		root  layout.Rect
	}{
		{"zero width", ok, layout.Rect{W: 0, H: 10}},
		{"negative height", ok, layout.Rect{W: 10, H: -1}},
		{"nan root", ok, layout.Rect{W: math.NaN(), H: 10}},
		{"zero width empty items", nil, layout.Rect{W: 0, H: 10}},
		{"zero value", []layout.Item{{"a", 0}}, layout.Rect{W: 10, H: 10}},
		{"negative value", []layout.Item{{"a", 2}, {"b", -1}}, layout.Rect{W: 10, H: 10}},
		{"nan value", []layout.Item{{"a", math.NaN()}}, layout.Rect{W: 10, H: 10}},
		{"inf value", []layout.Item{{"a", math.Inf(1)}}, layout.Rect{W: 10, H: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LayoutItems(tt.items, tt.root)
			if !errors.Is(err, errors.ErrCodeLayout) {
				t.Errorf("error = %v, want LAYOUT_ERROR", err)
			}
		})
	}
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	items := []layout.Item{{"a", 1}, {"b", 3}, {"c", 2}}
	_, err := LayoutItems(items, layout.Rect{W: 10, H: 10})
	require.NoError(t, err)
	assert.Equal(t, []layout.Item{{"a", 1}, {"b", 3}, {"c", 2}}, items)
}

func TestLayoutEqualValuesRoughlyEqualAreas(t *testing.T) {
	var items []layout.Item
	for i := 0; i < 9; i++ {
		items = append(items, layout.Item{Label: fmt.Sprintf("l%d", i), Value: 1})
	}
	root := layout.Rect{W: 90, H: 90}
	nodes, err := LayoutItems(items, root)
	require.NoError(t, err)

	for _, n := range nodes {
		assert.InEpsilon(t, root.Area()/9, n.Rect.Area(), 1e-9, "label %s", n.Label)
	}
}

// TestLayout_Invariants property-tests the partition invariants: tiles stay
// inside the root, never overlap, and cover exactly the root area with
// areas proportional to value.
func TestLayout_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 300; trial++ {
		n := rng.Intn(40) + 1
		items := make([]layout.Item, n)
		for i := range items {
			v := float64(rng.Intn(10000) + 1)
			if rng.Intn(5) == 0 {
				v = float64(rng.Intn(3) + 1) // force ties and skew
			}
			items[i] = layout.Item{Label: fmt.Sprintf("item-%d", i), Value: v}
		}
		root := layout.Rect{
			X: float64(rng.Intn(50)),
			Y: float64(rng.Intn(50)),
			W: rng.Float64()*2000 + 1,
			H: rng.Float64()*2000 + 1,
		}

		nodes, err := LayoutItems(items, root)
		require.NoError(t, err, "trial %d", trial)
		require.Len(t, nodes, n, "trial %d", trial)

		assertPartition(t, nodes, root, fmt.Sprintf("trial %d", trial))

		var total float64
		for _, it := range items {
			total += it.Value
		}
		for _, node := range nodes {
			want := root.Area() * node.Value / total
			assert.InDelta(t, want, node.Rect.Area(), 1e-6*root.Area(),
				"%s: area of %s not proportional to value", fmt.Sprintf("trial %d", trial), node.Label)
		}
	}
}

func assertPartition(t *testing.T, nodes []layout.TreemapNode, root layout.Rect, msg string) {
	t.Helper()
	eps := 1e-9 * max(root.W, root.H)

	var sum float64
	for i, a := range nodes {
		sum += a.Rect.Area()
		assert.True(t, root.Contains(a.Rect, eps), "%s: %s %v escapes root %v", msg, a.Label, a.Rect, root)
		assert.GreaterOrEqual(t, a.Rect.W, 0.0, "%s: %s negative width", msg, a.Label)
		assert.GreaterOrEqual(t, a.Rect.H, 0.0, "%s: %s negative height", msg, a.Label)
		for _, b := range nodes[i+1:] {
			assert.LessOrEqual(t, overlap(a.Rect, b.Rect), 1e-9*root.Area(),
				"%s: %s %v overlaps %s %v", msg, a.Label, a.Rect, b.Label, b.Rect)
		}
	}
	assert.InEpsilon(t, root.Area(), sum, 1e-6, "%s: tiles must cover the root", msg)
}

func overlap(a, b layout.Rect) float64 {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
