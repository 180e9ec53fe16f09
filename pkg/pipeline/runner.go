package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/observability"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Run loads every dataset from src and executes the pipeline over them.
func (r *Runner) Run(ctx context.Context, src source.Source, opts Options) ([]Result, error) {
	datasets, err := src.Datasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s datasets: %w", src.Name(), err)
	}
	r.Logger.Info("loaded datasets", "source", src.Name(), "count", len(datasets))
	return r.Execute(ctx, datasets, opts)
}

// Execute runs aggregate → layout → render for every dataset × key × viz
// type. Datasets are processed concurrently; a failing dataset records
// its error in Result.Err and does not affect the others. The returned
// error is non-nil only for invalid options or a cancelled context.
func (r *Runner) Execute(ctx context.Context, datasets []source.Dataset, opts Options) ([]Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	logger.Debug("pipeline start", "datasets", len(datasets), "keys", opts.Keys, "viz", opts.VizTypes, "formats", opts.Formats)

	results := make([]Result, len(datasets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, ds := range datasets {
		g.Go(func() error {
			results[i] = r.executeDataset(gctx, ds, opts, logger.With("dataset", ds.Title))
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) executeDataset(ctx context.Context, ds source.Dataset, opts Options, logger *log.Logger) Result {
	res := Result{Dataset: ds.Title, Source: ds.Source, Stats: Stats{Records: len(ds.Records)}}
	if ds.Err != nil {
		logger.Warn("skipping dataset", "error", ds.Err)
		res.Err = ds.Err
		return res
	}

	for _, key := range opts.Keys {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}

		start := time.Now()
		agg, hit, err := r.AggregateWithCacheInfo(ctx, ds, key, opts)
		res.Stats.AggregateTime += time.Since(start)
		if err != nil {
			res.Err = fmt.Errorf("aggregate %s: %w", key, err)
			return res
		}
		if hit {
			res.CacheInfo.AggregateHits++
		}
		res.Aggregations = append(res.Aggregations, agg)
		res.Stats.Skipped += len(agg.Skipped)
		for _, msg := range agg.Skipped {
			logger.Warn("skipped record", "key", key, "reason", msg)
		}
		if agg.Values.Len() == 0 {
			logger.Warn("no positive totals", "key", key)
			continue
		}

		meta := Meta{Title: ds.Title, Key: key}
		for _, viz := range opts.VizTypes {
			if err := r.produce(ctx, &res, agg.Values, viz, meta, opts, logger); err != nil {
				res.Err = err
				return res
			}
		}
	}
	logger.Info("dataset done", "artifacts", len(res.Artifacts), "skipped", res.Stats.Skipped, "dropped", res.Stats.Dropped)
	return res
}

// produce lays out and renders one key × viz pair into res.
func (r *Runner) produce(ctx context.Context, res *Result, values slips.Values, viz string, meta Meta, opts Options, logger *log.Logger) error {
	start := time.Now()
	l, hit, err := r.GenerateLayoutWithCacheInfo(ctx, values, viz, meta, opts)
	res.Stats.LayoutTime += time.Since(start)
	if err != nil {
		return fmt.Errorf("layout %s/%s: %w", meta.Key, viz, err)
	}
	if hit {
		res.CacheInfo.LayoutHits++
	}
	if n := len(l.Dropped); n > 0 {
		res.Stats.Dropped += n
		logger.Warn("dropped words", "key", meta.Key, "count", n, "labels", l.Dropped)
	}

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	res.Stats.RenderTime += time.Since(start)
	if err != nil {
		return fmt.Errorf("render %s/%s: %w", meta.Key, viz, err)
	}
	if hit {
		res.CacheInfo.RenderHits++
	}
	for _, format := range opts.Formats {
		res.Artifacts = append(res.Artifacts, Artifact{
			Name:    ArtifactName(meta.Title, meta.Key, viz, format),
			Key:     meta.Key,
			VizType: viz,
			Format:  format,
			Data:    artifacts[format],
		})
	}
	return nil
}

// AggregateWithCacheInfo sums ds's durations by key and reports whether the
// totals came from the cache.
func (r *Runner) AggregateWithCacheInfo(ctx context.Context, ds source.Dataset, key string, opts Options) (Aggregation, bool, error) {
	if ds.Err != nil {
		return Aggregation{}, false, ds.Err
	}
	k, err := slips.ParseKey(key)
	if err != nil {
		return Aggregation{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnAggregateStart(ctx, ds.Title, string(k))
	start := time.Now()

	cacheKey := r.Keyer.ValuesKey(cache.Hash(ds.Fingerprint()), string(k))
	if !opts.Refresh {
		var agg Aggregation
		if r.getJSON(ctx, "values", cacheKey, &agg) {
			hooks.OnAggregateComplete(ctx, ds.Title, string(k), agg.Values.Len(), len(agg.Skipped), time.Since(start), nil)
			return agg, true, nil
		}
	}

	agg := Aggregate(ds.Records, k)
	hooks.OnAggregateComplete(ctx, ds.Title, string(k), agg.Values.Len(), len(agg.Skipped), time.Since(start), nil)
	r.setJSON(ctx, "values", cacheKey, agg, cache.TTLValues)
	return agg, false, nil
}

// Aggregate is the uncached aggregate stage.
func Aggregate(records []slips.Record, key slips.Key) Aggregation {
	values, skipped := slips.Aggregate(records, key)
	agg := Aggregation{Key: string(key), Values: values}
	for _, err := range skipped {
		agg.Skipped = append(agg.Skipped, err.Error())
	}
	return agg
}

// GenerateLayoutWithCacheInfo computes a layout with caching. The cached
// geometry is shared across datasets with identical totals; meta is
// applied afterwards.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, values slips.Values, vizType string, meta Meta, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, vizType, values.Len())
	start := time.Now()

	valuesData, err := json.Marshal(values)
	if err != nil {
		return layout.Layout{}, false, fmt.Errorf("serialize values for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(valuesData), opts.LayoutKeyOpts(vizType, meta.Key))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if l, err := layout.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				l.Title, l.Key = meta.Title, meta.Key
				hooks.OnLayoutComplete(ctx, vizType, len(l.Dropped), time.Since(start), nil)
				return l, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := GenerateLayout(values, vizType, meta, opts)
	hooks.OnLayoutComplete(ctx, vizType, len(l.Dropped), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if data, err := layout.MarshalLayout(l); err == nil {
		r.set(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	opts.Logger.Debug("computed layout", "viz", vizType, "key", meta.Key, "items", values.Len(), "duration", time.Since(start))
	return l, false, nil
}

// GenerateLayout calls GenerateLayoutWithCacheInfo and discards the cache
// hit info.
func (r *Runner) GenerateLayout(ctx context.Context, values slips.Values, vizType string, meta Meta, opts Options) (layout.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, values, vizType, meta, opts)
	return l, err
}

// RenderWithCacheInfo renders l in every format with caching. The hit flag
// is true only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, l.Title))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, l.Title))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) getJSON(ctx context.Context, keyType, key string, v any) bool {
	if err := cache.GetJSON(ctx, r.Cache, key, v); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) setJSON(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	if data, err := json.Marshal(v); err == nil {
		r.set(ctx, keyType, key, data, ttl)
	}
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
