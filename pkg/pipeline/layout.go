package pipeline

import (
	"fmt"

	"github.com/matzehuels/slipmap/pkg/fonts"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/layout/treemap"
	"github.com/matzehuels/slipmap/pkg/layout/wordcloud"
	"github.com/matzehuels/slipmap/pkg/slips"
)

// defaultMetrics measures with the embedded font so word boxes match the
// PNG renderer. It is shared because it caches faces.
var defaultMetrics = fonts.NewFaceMetrics()

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes a layout of vizType for values. It is the
// uncached entry point behind [Runner.GenerateLayout].
func GenerateLayout(values slips.Values, vizType string, meta Meta, opts Options) (layout.Layout, error) {
	if err := layout.ValidateVizType(vizType); err != nil {
		return layout.Layout{}, err
	}
	canvas := opts.CanvasFor(vizType)
	l := layout.Layout{
		VizType: vizType,
		Title:   meta.Title,
		Key:     meta.Key,
		Width:   canvas.W,
		Height:  canvas.H,
	}

	if vizType == layout.VizTypeTreemap {
		nodes, err := treemap.Layout(values, canvas)
		if err != nil {
			return layout.Layout{}, err
		}
		l.Nodes = nodes
		l.ShowTime = opts.ShowTime
		return l, nil
	}

	res, err := wordcloud.Layout(values, canvas, opts.wordCloudOptions()...)
	if err != nil {
		return layout.Layout{}, err
	}
	l.Words = res.Placements
	l.Dropped = res.Dropped
	return l, nil
}

func (o *Options) metrics() wordcloud.Metrics {
	if o.Metrics != nil {
		return o.Metrics
	}
	return defaultMetrics
}

// MetricsKeyer is implemented by metrics providers that name their own
// layout cache identity. Two providers measuring differently must return
// different keys.
type MetricsKeyer interface {
	CacheKey() string
}

// metricsName identifies a metrics provider in cache keys. Providers that
// are not MetricsKeyers are identified by type and printed value.
func metricsName(m wordcloud.Metrics) string {
	switch m := m.(type) {
	case *fonts.FaceMetrics:
		return "face:" + fonts.FontFamily
	case wordcloud.CharMetrics:
		return fmt.Sprintf("char:%g:%g", m.CharWidth, m.LineHeight)
	case MetricsKeyer:
		return fmt.Sprintf("%T:%s", m, m.CacheKey())
	default:
		return fmt.Sprintf("%T:%+v", m, m)
	}
}
