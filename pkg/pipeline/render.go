package pipeline

import (
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/render/sink"
)

// Render produces every format in opts.Formats for l. It is the uncached
// entry point behind [Runner.Render].
func Render(l layout.Layout, opts Options) (map[string][]byte, error) {
	return sink.Render(l, opts.Formats, renderOptions(l, opts))
}

func renderOptions(l layout.Layout, opts Options) sink.Options {
	ro := sink.Options{PNG: []sink.PNGOption{sink.WithScale(opts.PNGScale)}}
	if opts.Titles {
		ro.Title = l.Title
	}
	return ro
}

// RenderFromLayoutData renders serialized layout JSON, as written by the
// layout command or the json format.
func RenderFromLayoutData(data []byte, opts Options) (map[string][]byte, error) {
	l, err := layout.UnmarshalLayout(data)
	if err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	return Render(l, opts)
}
