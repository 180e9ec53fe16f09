// Package pipeline runs the aggregate → layout → render stages for time-slip
// datasets.
//
// The CLI, the HTTP API and tests all go through this package so that
// defaults, validation and caching behave the same everywhere.
//
// # Stages
//
//  1. Aggregate: sum a dataset's durations by key ([slips.Aggregate])
//  2. Layout: place the totals as a treemap or word cloud
//  3. Render: produce SVG, PNG or JSON from the layout
//
// Each stage is cached by content hash, so re-running over unchanged notes
// only pays for lookups.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	results, err := runner.Execute(ctx, datasets, pipeline.Options{
//	    VizTypes: []string{"treemap"},
//	    Formats:  []string{"png"},
//	})
//	for _, res := range results {
//	    for _, a := range res.Artifacts {
//	        os.WriteFile(a.Name, a.Data, 0o644)
//	    }
//	}
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/layout/wordcloud"
	"github.com/matzehuels/slipmap/pkg/render/sink"
	"github.com/matzehuels/slipmap/pkg/slips"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTreemapWidth and DefaultTreemapHeight match a 10x8 inch figure
	// at 100 DPI.
	DefaultTreemapWidth  = 1000.0
	DefaultTreemapHeight = 800.0

	DefaultCloudWidth  = 800.0
	DefaultCloudHeight = 400.0

	// DefaultPNGScale renders PNGs at layout size.
	DefaultPNGScale = 1.0

	DefaultConcurrency = 4
)

// DefaultKeys are the aggregation keys used when none are given.
var DefaultKeys = []string{string(slips.KeyTask), string(slips.KeyProject)}

// DefaultVizTypes are the visualizations produced when none are given.
var DefaultVizTypes = []string{layout.VizTypeTreemap, layout.VizTypeWordCloud}

// DefaultFormats are the output formats produced when none are given.
var DefaultFormats = []string{sink.FormatPNG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	Keys     []string `json:"keys,omitempty"`
	VizTypes []string `json:"viz_types,omitempty"`
	Formats  []string `json:"formats,omitempty"`

	// Treemap options
	TreemapWidth  float64 `json:"treemap_width,omitempty"`
	TreemapHeight float64 `json:"treemap_height,omitempty"`
	ShowTime      bool    `json:"show_time,omitempty"`

	// Word cloud options; zero values take the wordcloud package defaults.
	CloudWidth  float64 `json:"cloud_width,omitempty"`
	CloudHeight float64 `json:"cloud_height,omitempty"`
	MinFont     float64 `json:"min_font,omitempty"`
	MaxFont     float64 `json:"max_font,omitempty"`
	Scale       string  `json:"scale,omitempty"`
	MaxSteps    int     `json:"max_steps,omitempty"`
	Padding     float64 `json:"padding,omitempty"`

	// Render options
	PNGScale float64 `json:"png_scale,omitempty"`
	Titles   bool    `json:"titles,omitempty"` // draw the dataset title above each image

	Refresh     bool `json:"refresh,omitempty"`
	Concurrency int  `json:"-"`

	// Runtime options (not serialized)
	Metrics wordcloud.Metrics `json:"-"`
	Logger  *log.Logger       `json:"-"`

	validated bool
}

// Result holds the outputs for one dataset.
type Result struct {
	Dataset      string        `json:"dataset"`
	Source       string        `json:"source"`
	Aggregations []Aggregation `json:"aggregations,omitempty"`
	Artifacts    []Artifact    `json:"artifacts,omitempty"`
	Stats        Stats         `json:"stats"`
	CacheInfo    CacheInfo     `json:"cache_info"`
	// Err is set when the dataset could not be processed; other datasets
	// in the same run are unaffected.
	Err error `json:"-"`
}

// Artifact is one rendered file.
type Artifact struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	VizType string `json:"viz_type"`
	Format  string `json:"format"`
	Data    []byte `json:"-"`
}

// Aggregation is the output of the aggregate stage for one key.
type Aggregation struct {
	Key     string       `json:"key"`
	Values  slips.Values `json:"values"`
	Skipped []string     `json:"skipped,omitempty"` // malformed durations, one message each
}

// Stats contains timing and size information for one dataset.
type Stats struct {
	Records       int           `json:"records"`
	Skipped       int           `json:"skipped"`
	Dropped       int           `json:"dropped"` // word-cloud labels with no free position
	AggregateTime time.Duration `json:"aggregate_time"`
	LayoutTime    time.Duration `json:"layout_time"`
	RenderTime    time.Duration `json:"render_time"`
}

// CacheInfo counts cache hits per stage.
type CacheInfo struct {
	AggregateHits int `json:"aggregate_hits"`
	LayoutHits    int `json:"layout_hits"`
	RenderHits    int `json:"render_hits"`
}

// Meta names the dataset and key a layout was computed for.
type Meta struct {
	Title string
	Key   string
}

// ArtifactName returns the file name for an artifact:
// "{title}_{key}_{viz}.{format}" with the title made safe for file systems.
func ArtifactName(title, key, vizType, format string) string {
	return fmt.Sprintf("%s_%s_%s.%s", errors.SanitizeTitle(title), key, vizType, format)
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizTypes checks that every visualization type is known.
func ValidateVizTypes(vizTypes []string) error {
	for _, v := range vizTypes {
		if err := layout.ValidateVizType(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFormats checks that every output format is known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := sink.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults validates every stage and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAggregate(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	o.validated = true
	return nil
}

// ValidateForAggregate normalizes and checks the aggregation keys.
func (o *Options) ValidateForAggregate() error {
	o.setLogger()
	if len(o.Keys) == 0 {
		o.Keys = slices.Clone(DefaultKeys)
	}
	seen := make(map[string]bool, len(o.Keys))
	keys := o.Keys[:0:0]
	for _, k := range o.Keys {
		key, err := slips.ParseKey(k)
		if err != nil {
			return err
		}
		if !seen[string(key)] {
			seen[string(key)] = true
			keys = append(keys, string(key))
		}
	}
	o.Keys = keys
	return nil
}

// SetLayoutDefaults fills in zero layout options.
func (o *Options) SetLayoutDefaults() {
	o.setLogger()
	o.VizTypes = normalize(o.VizTypes)
	if len(o.VizTypes) == 0 {
		o.VizTypes = slices.Clone(DefaultVizTypes)
	}
	if o.TreemapWidth == 0 {
		o.TreemapWidth = DefaultTreemapWidth
	}
	if o.TreemapHeight == 0 {
		o.TreemapHeight = DefaultTreemapHeight
	}
	if o.CloudWidth == 0 {
		o.CloudWidth = DefaultCloudWidth
	}
	if o.CloudHeight == 0 {
		o.CloudHeight = DefaultCloudHeight
	}
	d := wordcloud.DefaultOptions()
	if o.MinFont == 0 {
		o.MinFont = d.MinFontSize
	}
	if o.MaxFont == 0 {
		o.MaxFont = d.MaxFontSize
	}
	if o.Scale == "" {
		o.Scale = string(d.Scale)
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = d.MaxSteps
	}
}

// ValidateForLayout applies layout defaults and validates them.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizTypes(o.VizTypes); err != nil {
		return err
	}
	if !(layout.Rect{W: o.TreemapWidth, H: o.TreemapHeight}).Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "treemap size must be positive, got %gx%g", o.TreemapWidth, o.TreemapHeight)
	}
	if !(layout.Rect{W: o.CloudWidth, H: o.CloudHeight}).Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "word cloud size must be positive, got %gx%g", o.CloudWidth, o.CloudHeight)
	}
	wo := wordcloud.DefaultOptions()
	for _, opt := range o.wordCloudOptions() {
		opt(&wo)
	}
	return wo.Validate()
}

// SetRenderDefaults fills in zero render options.
func (o *Options) SetRenderDefaults() {
	o.setLogger()
	o.Formats = normalize(o.Formats)
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
}

// ValidateForRender applies render defaults and validates them.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", o.PNGScale)
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// CanvasFor returns the layout frame for a visualization type.
func (o *Options) CanvasFor(vizType string) layout.Rect {
	if vizType == layout.VizTypeWordCloud {
		return layout.Rect{W: o.CloudWidth, H: o.CloudHeight}
	}
	return layout.Rect{W: o.TreemapWidth, H: o.TreemapHeight}
}

// wordCloudOptions converts the flat options to wordcloud options.
func (o *Options) wordCloudOptions() []wordcloud.Option {
	return []wordcloud.Option{
		wordcloud.WithFontRange(o.MinFont, o.MaxFont),
		wordcloud.WithScale(wordcloud.Scale(o.Scale)),
		wordcloud.WithMaxSteps(o.MaxSteps),
		wordcloud.WithPadding(o.Padding),
		wordcloud.WithMetrics(o.metrics()),
	}
}

// LayoutKeyOpts returns cache key options for a layout of vizType.
func (o *Options) LayoutKeyOpts(vizType, key string) cache.LayoutKeyOpts {
	canvas := o.CanvasFor(vizType)
	k := cache.LayoutKeyOpts{
		VizType: vizType,
		Key:     key,
		Width:   canvas.W,
		Height:  canvas.H,
	}
	if vizType == layout.VizTypeTreemap {
		k.ShowTime = o.ShowTime
		return k
	}
	k.MinFont, k.MaxFont = o.MinFont, o.MaxFont
	k.Scale = o.Scale
	k.MaxSteps = o.MaxSteps
	k.Padding = o.Padding
	k.Metrics = metricsName(o.metrics())
	return k
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format, title string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if o.Titles {
		k.Title = title
	}
	if format == sink.FormatPNG {
		k.PNGScale = o.PNGScale
	}
	return k
}

func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
