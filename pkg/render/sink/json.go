package sink

import "github.com/matzehuels/slipmap/pkg/layout"

// RenderJSON exports the layout as pretty-printed JSON. The output can be
// read back with layout.UnmarshalLayout and rendered again.
func RenderJSON(l layout.Layout) ([]byte, error) {
	return layout.MarshalLayout(l)
}
