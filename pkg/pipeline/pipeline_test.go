package pipeline

import (
	"slices"
	"testing"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout/wordcloud"
)

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "pdf"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("pdf should fail with INVALID_FORMAT, got %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizTypes(t *testing.T) {
	tests := []struct {
		vizTypes []string
		wantErr  bool
	}{
		{[]string{"treemap"}, false},
		{[]string{"treemap", "wordcloud"}, false},
		{[]string{"tower"}, true},
		{[]string{""}, true},
	}
	for _, tt := range tests {
		err := ValidateVizTypes(tt.vizTypes)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizTypes(%v) error = %v, wantErr %v", tt.vizTypes, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if !slices.Equal(opts.Keys, []string{"task", "project"}) {
		t.Errorf("Keys = %v", opts.Keys)
	}
	if !slices.Equal(opts.VizTypes, []string{"treemap", "wordcloud"}) {
		t.Errorf("VizTypes = %v", opts.VizTypes)
	}
	if !slices.Equal(opts.Formats, []string{"png"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.TreemapWidth != 1000 || opts.TreemapHeight != 800 {
		t.Errorf("treemap size = %gx%g, want 1000x800", opts.TreemapWidth, opts.TreemapHeight)
	}
	if opts.CloudWidth != 800 || opts.CloudHeight != 400 {
		t.Errorf("cloud size = %gx%g, want 800x400", opts.CloudWidth, opts.CloudHeight)
	}
	if opts.MinFont != wordcloud.DefaultMinFontSize || opts.MaxSteps != wordcloud.DefaultMaxSteps {
		t.Errorf("word cloud defaults not applied: %+v", opts)
	}
	if opts.PNGScale != DefaultPNGScale || opts.Concurrency != DefaultConcurrency {
		t.Errorf("PNGScale = %g Concurrency = %d", opts.PNGScale, opts.Concurrency)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsNormalize(t *testing.T) {
	opts := Options{
		Keys:     []string{"Task", "task", " Client "},
		VizTypes: []string{"WordCloud", "wordcloud"},
		Formats:  []string{"SVG", " json"},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if !slices.Equal(opts.Keys, []string{"task", "client"}) {
		t.Errorf("Keys = %v", opts.Keys)
	}
	if !slices.Equal(opts.VizTypes, []string{"wordcloud"}) {
		t.Errorf("VizTypes = %v", opts.VizTypes)
	}
	if !slices.Equal(opts.Formats, []string{"svg", "json"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
}

func TestOptionsValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"duration key", Options{Keys: []string{"duration"}}, errors.ErrCodeInvalidKey},
		{"unknown viz", Options{VizTypes: []string{"pie"}}, errors.ErrCodeInvalidVizType},
		{"unknown format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{TreemapWidth: -1}, errors.ErrCodeInvalidInput},
		{"font range", Options{MinFont: 50, MaxFont: 20}, errors.ErrCodeInvalidInput},
		{"scale", Options{Scale: "log"}, errors.ErrCodeInvalidInput},
		{"padding", Options{Padding: -2}, errors.ErrCodeInvalidInput},
		{"png scale", Options{PNGScale: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Keys: []string{"Project"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	keys := slices.Clone(opts.Keys)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if !slices.Equal(keys, opts.Keys) {
		t.Errorf("Keys changed on second call: %v -> %v", keys, opts.Keys)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	opts := Options{ShowTime: true}
	opts.SetLayoutDefaults()

	tm := opts.LayoutKeyOpts("treemap", "task")
	if tm.Width != DefaultTreemapWidth || !tm.ShowTime || tm.MaxSteps != 0 {
		t.Errorf("treemap key opts = %+v", tm)
	}
	wc := opts.LayoutKeyOpts("wordcloud", "task")
	if wc.Width != DefaultCloudWidth || wc.ShowTime || wc.Metrics == "" {
		t.Errorf("wordcloud key opts = %+v", wc)
	}

	opts.Metrics = wordcloud.CharMetrics{CharWidth: 0.6}
	if opts.LayoutKeyOpts("wordcloud", "task").Metrics == wc.Metrics {
		t.Error("metrics provider should change the layout key")
	}
}

// monoMetrics measures every glyph as a fixed-width cell.
type monoMetrics struct{ cell float64 }

func (m monoMetrics) Measure(label string, fontSize float64) (float64, float64) {
	return float64(len(label)) * m.cell * fontSize, fontSize
}

// namedMetrics supplies its own cache identity.
type namedMetrics struct {
	monoMetrics
	name string
}

func (m namedMetrics) CacheKey() string { return m.name }

func TestLayoutKeyOptsCustomMetrics(t *testing.T) {
	key := func(m wordcloud.Metrics) string {
		opts := Options{Metrics: m}
		opts.SetLayoutDefaults()
		return opts.LayoutKeyOpts("wordcloud", "task").Metrics
	}

	if key(monoMetrics{cell: 0.5}) == key(monoMetrics{cell: 0.7}) {
		t.Error("same metrics type with different settings should not share a layout key")
	}
	if key(monoMetrics{cell: 0.5}) != key(monoMetrics{cell: 0.5}) {
		t.Error("equal metrics should share a layout key")
	}

	a := key(namedMetrics{monoMetrics{0.5}, "mono-v1"})
	b := key(namedMetrics{monoMetrics{0.7}, "mono-v1"})
	if a != b {
		t.Errorf("CacheKey should define the identity: %q != %q", a, b)
	}
	if a == key(namedMetrics{monoMetrics{0.5}, "mono-v2"}) {
		t.Error("different CacheKey values should give different layout keys")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{PNGScale: 2}
	if k := opts.ArtifactKeyOpts("svg", "week 1"); k.Title != "" || k.PNGScale != 0 {
		t.Errorf("svg key opts = %+v", k)
	}
	opts.Titles = true
	if k := opts.ArtifactKeyOpts("png", "week 1"); k.Title != "week 1" || k.PNGScale != 2 {
		t.Errorf("png key opts = %+v", k)
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		title, key, viz, format string
		want                    string
	}{
		{"week 12", "task", "treemap", "png", "week 12_task_treemap.png"},
		{"Q1/Q2", "project", "wordcloud", "svg", "Q1_Q2_project_wordcloud.svg"},
		{"", "task", "treemap", "json", "untitled_task_treemap.json"},
	}
	for _, tt := range tests {
		if got := ArtifactName(tt.title, tt.key, tt.viz, tt.format); got != tt.want {
			t.Errorf("ArtifactName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
