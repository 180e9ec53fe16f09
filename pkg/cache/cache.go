// Package cache provides the storage layer for slipmap's pipeline results.
//
// Four kinds of values are cached, each under its own key family:
//
//   - HTTP responses from the Joplin Data API (short TTL)
//   - Aggregated totals, keyed by the hash of a dataset's records and the key
//   - Layouts, keyed by the hash of the aggregated values and layout options
//   - Rendered artifacts, keyed by the hash of the layout and render options
//
// # Backends
//
//   - [FileCache]: JSON entry files under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (serve mode, multiple replicas)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// All backends are safe for concurrent use.
//
// # Keys
//
// A [Keyer] derives keys from content hashes so that identical inputs share
// entries regardless of where they came from:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(valuesJSON), cache.LayoutKeyOpts{VizType: "treemap", Width: 1000, Height: 800})
//
// Wrap a keyer with [NewScopedKeyer] to give separate tenants separate
// namespaces in a shared backend.
package cache

import (
	"context"
	"time"
)

// TTLs for each key family.
const (
	TTLHTTP     = 15 * time.Minute
	TTLValues   = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values with an optional time-to-live.
// A ttl of zero means the entry never expires.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer derives cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	ValuesKey(recordsHash, key string) string
	LayoutKey(valuesHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a computed layout.
type LayoutKeyOpts struct {
	VizType  string  `json:"viz_type"`
	Key      string  `json:"key"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ShowTime bool    `json:"show_time,omitempty"`
	MinFont  float64 `json:"min_font,omitempty"`
	MaxFont  float64 `json:"max_font,omitempty"`
	Scale    string  `json:"scale,omitempty"`
	MaxSteps int     `json:"max_steps,omitempty"`
	Padding  float64 `json:"padding,omitempty"`
	Metrics  string  `json:"metrics,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Title    string  `json:"title,omitempty"`
	PNGScale float64 `json:"png_scale,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ValuesKey keys the totals aggregated by key from records with the given
// hash.
func (DefaultKeyer) ValuesKey(recordsHash, key string) string {
	return hashKey("values", recordsHash, key)
}

// LayoutKey keys a layout computed from values with the given hash.
func (DefaultKeyer) LayoutKey(valuesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", valuesHash, opts)
}

// ArtifactKey keys an artifact rendered from the layout with the given hash.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// expired reports whether an entry with the given expiry is stale at now.
// The zero time never expires.
func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && now.After(expiresAt)
}

// expiry converts a ttl to an absolute expiry time, zero for no expiry.
func expiry(ttl time.Duration, now time.Time) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
