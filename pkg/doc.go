// Package pkg holds the libraries behind slipmap, which sums the durations in
// time-slip tables and draws the totals as treemaps and word clouds.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Domain: [slips] (durations, records, aggregation) and [layout]
//     (geometry plus the treemap and wordcloud layouters)
//  2. Output: [render/sink] (SVG, PNG and JSON) and [fonts]
//  3. Inputs: [source] (local CSV files, Joplin notes) and [integrations]
//     (the Joplin Data API client)
//  4. Plumbing: [pipeline], [cache], [errors], [observability],
//     [httputil] and [buildinfo]
//
// # Architecture
//
//	CSV file / Joplin note
//	         ↓
//	    [source] (one Dataset per table)
//	         ↓
//	    [slips] (parse H:MM:SS, sum per task or project)
//	         ↓
//	    [layout] (treemap or word cloud)
//	         ↓
//	    [render/sink] (SVG / PNG / JSON)
//
// [pipeline] drives these stages and caches each one by content hash.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	results, err := runner.Run(ctx, local.New("slips/"), pipeline.Options{
//	    Keys:     []string{"project"},
//	    VizTypes: []string{"treemap", "wordcloud"},
//	    Formats:  []string{"svg"},
//	})
//
// [slips]: github.com/matzehuels/slipmap/pkg/slips
// [layout]: github.com/matzehuels/slipmap/pkg/layout
// [render/sink]: github.com/matzehuels/slipmap/pkg/render/sink
// [fonts]: github.com/matzehuels/slipmap/pkg/fonts
// [source]: github.com/matzehuels/slipmap/pkg/source
// [integrations]: github.com/matzehuels/slipmap/pkg/integrations
// [pipeline]: github.com/matzehuels/slipmap/pkg/pipeline
// [cache]: github.com/matzehuels/slipmap/pkg/cache
// [errors]: github.com/matzehuels/slipmap/pkg/errors
// [observability]: github.com/matzehuels/slipmap/pkg/observability
// [httputil]: github.com/matzehuels/slipmap/pkg/httputil
// [buildinfo]: github.com/matzehuels/slipmap/pkg/buildinfo
package pkg
