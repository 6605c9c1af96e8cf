package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/cache"
	"github.com/matzehuels/bullet/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default expiry of both stages when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in bullet.Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Stats: Stats{ItemCount: itemCount(in)}}

	// Stage 1: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.InputHash = inputHash(in)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Debug("computed layout",
		"items", len(l.Items),
		"range", fmt.Sprintf("%s..%s", bullet.FormatValue(l.Range.Min), bullet.FormatValue(l.Range.Max)),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
//
// Inputs whose labels hold Go-built fragments are never cached, since
// they cannot be stored without changing.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, in bullet.Input, opts Options) (l *bullet.Layout, hit bool, err error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, itemCount(in))
	start := time.Now()
	defer func() {
		n := 0
		if l != nil {
			n = len(l.Items)
		}
		hooks.OnLayoutComplete(ctx, n, time.Since(start), err)
	}()

	cacheable := Cacheable(in)
	var cacheKey string
	if cacheable {
		cacheKey = r.Keyer.LayoutKey(inputHash(in))
	}

	// Try cache first (unless refresh requested)
	if cacheable && !opts.Refresh {
		if cached, ok := r.getLayout(ctx, cacheKey); ok {
			return cached, true, nil
		}
	}

	l, err = ComputeLayout(in)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := json.Marshal(l); err == nil {
			r.set(ctx, keyTypeLayout, cacheKey, data, cache.TTLLayout)
		}
	}
	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, in bullet.Input, opts Options) (*bullet.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, in, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The hit flag is true only when every requested format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *bullet.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err)
	}()

	// Compute cache key from layout data
	layoutHash, cacheable := layoutHash(l)

	artifacts = make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if cacheable && !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.get(ctx, keyTypeArtifact, key); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	// Render only what the cache could not supply
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, l, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if cacheable {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			r.set(ctx, keyTypeArtifact, key, data, cache.TTLArtifact)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *bullet.Layout, opts Options) (map[string][]byte, error) {
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

// getLayout reads and decodes a cached layout. Undecodable entries count
// as misses and are recomputed.
func (r *Runner) getLayout(ctx context.Context, key string) (*bullet.Layout, bool) {
	data, ok := r.get(ctx, keyTypeLayout, key)
	if !ok {
		return nil, false
	}
	var l bullet.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		r.Logger.Warn("discarding unreadable cached layout", "key", key, "error", err)
		return nil, false
	}
	return &l, true
}

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// set stores data, logging rather than failing: a broken cache never
// fails a request.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
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

// inputHash identifies an input by the hash of its JSON encoding.
func inputHash(in bullet.Input) string {
	h, err := cache.HashJSON(in)
	if err != nil {
		return ""
	}
	return h
}

// layoutHash identifies a layout for artifact keys. Layouts carrying
// Go-built label fragments are not cacheable.
func layoutHash(l *bullet.Layout) (string, bool) {
	for _, it := range l.Items {
		if f, ok := it.Item.Label.Fragment(); ok {
			if _, raw := f.(json.RawMessage); !raw {
				return "", false
			}
		}
	}
	if f, ok := l.Scale.Label.Fragment(); ok {
		if _, raw := f.(json.RawMessage); !raw {
			return "", false
		}
	}
	h, err := cache.HashJSON(l)
	if err != nil {
		return "", false
	}
	return h, true
}

func itemCount(in bullet.Input) int {
	return len(in.Values) + len(in.SecondaryValues) + len(in.Targets())
}
