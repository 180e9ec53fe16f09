package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/layout/wordcloud"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
)

// memCache is an in-memory cache.Cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func testDatasets() []source.Dataset {
	return []source.Dataset{
		{Title: "week 1", Source: "test", Records: []slips.Record{
			{Task: "write", Project: "docs", Duration: "0:30:00"},
			{Task: "write", Project: "api", Duration: "0:30:00"},
			{Task: "review", Project: "api", Duration: "0:15:00"},
			{Task: "review", Project: "api", Duration: "bad"},
		}},
		{Title: "broken", Source: "test", Err: errors.New("no duration column")},
		{Title: "week 2", Source: "test", Records: []slips.Record{
			{Task: "plan", Project: "ops", Duration: "2:00:00"},
		}},
	}
}

func testOptions() Options {
	return Options{
		Formats: []string{"svg", "json"},
		Metrics: wordcloud.CharMetrics{},
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, log.New(&bytes.Buffer{}))

	results, err := r.Execute(context.Background(), testDatasets(), testOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	week1 := results[0]
	if week1.Err != nil {
		t.Fatalf("week 1 error: %v", week1.Err)
	}
	// 2 keys × 2 viz types × 2 formats
	if len(week1.Artifacts) != 8 {
		t.Errorf("week 1 artifacts = %d, want 8", len(week1.Artifacts))
	}
	if week1.Stats.Skipped != 2 {
		t.Errorf("week 1 skipped = %d, want 2 (one bad row per key)", week1.Stats.Skipped)
	}
	names := map[string]bool{}
	for _, a := range week1.Artifacts {
		names[a.Name] = true
		if len(a.Data) == 0 {
			t.Errorf("%s is empty", a.Name)
		}
	}
	for _, want := range []string{
		"week 1_task_treemap.svg",
		"week 1_project_wordcloud.json",
	} {
		if !names[want] {
			t.Errorf("missing artifact %q in %v", want, names)
		}
	}

	if v, _ := week1.Aggregations[0].Values.Get("write"); v != 3600 {
		t.Errorf("write total = %d, want 3600", v)
	}

	if results[1].Err == nil || len(results[1].Artifacts) != 0 {
		t.Errorf("broken dataset = %+v, want an error and no artifacts", results[1])
	}
	if results[2].Err != nil || len(results[2].Artifacts) != 8 {
		t.Errorf("week 2 should be unaffected: err=%v artifacts=%d", results[2].Err, len(results[2].Artifacts))
	}
}

func TestExecuteArtifactsAreValidLayouts(t *testing.T) {
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	opts := testOptions()
	opts.Formats = []string{"json"}
	opts.Keys = []string{"project"}

	results, err := r.Execute(context.Background(), testDatasets()[:1], opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range results[0].Artifacts {
		l, err := layout.UnmarshalLayout(a.Data)
		if err != nil {
			t.Fatalf("%s: %v", a.Name, err)
		}
		if l.Title != "week 1" || l.Key != "project" || l.VizType != a.VizType {
			t.Errorf("%s: layout meta = %q %q %q", a.Name, l.Title, l.Key, l.VizType)
		}
		if l.IsTreemap() && len(l.Nodes) != 2 {
			t.Errorf("treemap nodes = %d, want 2", len(l.Nodes))
		}
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	ctx := context.Background()
	ds := testDatasets()[:1]

	first, err := r.Execute(ctx, ds, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first[0].CacheInfo.LayoutHits != 0 {
		t.Errorf("first run layout hits = %d, want 0", first[0].CacheInfo.LayoutHits)
	}
	sets := c.sets

	second, err := r.Execute(ctx, ds, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	ci := second[0].CacheInfo
	if ci.AggregateHits != 2 || ci.LayoutHits != 4 || ci.RenderHits != 4 {
		t.Errorf("second run cache info = %+v, want all hits", ci)
	}
	if c.sets != sets {
		t.Errorf("second run wrote %d entries, want 0", c.sets-sets)
	}
	if second[0].Stats.Skipped != 2 {
		t.Errorf("cached aggregation lost skipped records: %d", second[0].Stats.Skipped)
	}

	refresh := testOptions()
	refresh.Refresh = true
	third, _ := r.Execute(ctx, ds, refresh)
	if third[0].CacheInfo.LayoutHits != 0 {
		t.Errorf("refresh run should not hit the cache: %+v", third[0].CacheInfo)
	}
}

func TestLayoutCacheAppliesMeta(t *testing.T) {
	r := NewRunner(newMemCache(), nil, log.New(&bytes.Buffer{}))
	ctx := context.Background()
	values := slips.NewValues(slips.Entry{Label: "a", Seconds: 60}, slips.Entry{Label: "b", Seconds: 30})
	opts := testOptions()

	if _, hit, err := r.GenerateLayoutWithCacheInfo(ctx, values, "treemap", Meta{Title: "one", Key: "task"}, opts); err != nil || hit {
		t.Fatalf("first layout: hit=%v err=%v", hit, err)
	}
	l, hit, err := r.GenerateLayoutWithCacheInfo(ctx, values, "treemap", Meta{Title: "two", Key: "task"}, opts)
	if err != nil || !hit {
		t.Fatalf("second layout: hit=%v err=%v", hit, err)
	}
	if l.Title != "two" {
		t.Errorf("cached layout title = %q, want %q", l.Title, "two")
	}
}

func TestExecuteSkipsEmptyKey(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(nil, nil, log.New(&logs))
	ds := []source.Dataset{{Title: "zero", Records: []slips.Record{{Task: "idle", Duration: "0:00:00"}}}}

	results, err := r.Execute(context.Background(), ds, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err != nil || len(results[0].Artifacts) != 0 {
		t.Errorf("zero totals should produce no artifacts and no error: %+v", results[0])
	}
	if !strings.Contains(logs.String(), "no positive totals") {
		t.Errorf("expected a warning, logs:\n%s", logs.String())
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), testDatasets(), Options{Formats: []string{"gif"}})
	if err == nil {
		t.Error("invalid format should fail the run")
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	_, err := r.Execute(ctx, testDatasets(), testOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type staticSource struct{ ds []source.Dataset }

func (s staticSource) Name() string { return "static" }
func (s staticSource) Datasets(context.Context) ([]source.Dataset, error) {
	return s.ds, nil
}

func TestRun(t *testing.T) {
	r := NewRunner(nil, nil, log.New(&bytes.Buffer{}))
	opts := testOptions()
	opts.VizTypes = []string{"treemap"}
	opts.Keys = []string{"task"}

	results, err := r.Run(context.Background(), staticSource{testDatasets()[2:]}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || len(results[0].Artifacts) != 2 {
		t.Errorf("Run results = %+v", results)
	}
}

func TestRenderFromLayoutData(t *testing.T) {
	values := slips.NewValues(slips.Entry{Label: "a", Seconds: 60})
	l, err := GenerateLayout(values, "treemap", Meta{Title: "t"}, Options{TreemapWidth: 100, TreemapHeight: 50})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := layout.MarshalLayout(l)

	out, err := RenderFromLayoutData(data, Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("RenderFromLayoutData: %v", err)
	}
	if !strings.Contains(string(out["svg"]), "<svg") {
		t.Errorf("svg output = %s", out["svg"])
	}

	if _, err := RenderFromLayoutData([]byte("{}"), Options{}); err == nil {
		t.Error("invalid layout data should fail")
	}
}

var _ cache.Cache = (*memCache)(nil)
