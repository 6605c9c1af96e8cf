// Package cache stores computed layouts and rendered artifacts.
//
// Chart layouts are cheap to compute but rendering is not (PNG and PDF shell
// out or rasterise), so the pipeline keys both stages by content hash and
// keeps them in a [Cache]. Four backends are provided:
//
//   - [NullCache]: caches nothing
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [MongoCache]: TTL-indexed collection for deployments that already run MongoDB
//
// Keys come from a [Keyer], so the same backend can be shared between
// tenants with [ScopedKeyer].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the data for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey returns the key for the layout of an input.
	LayoutKey(inputHash string) string
	// ArtifactKey returns the key for one rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	VizType      string  `json:"viz_type"`
	Format       string  `json:"format"`
	Theme        string  `json:"theme"`
	Reveal       string  `json:"reveal"` // "", "pre" or "shown"
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Scale        float64 `json:"scale,omitempty"`   // raster formats
	Columns      int     `json:"columns,omitempty"` // text format
	WrapperClass string  `json:"wrapper_class,omitempty"`
	Document     bool    `json:"document,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(inputHash string) string {
	return fmt.Sprintf("layout:%s", inputHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string
	Dir     string // file backend
	Redis   RedisOptions
	Mongo   MongoOptions
}

// Open creates the cache backend named by opts.Backend. Remote backends
// are pinged before Open returns, with retries on transient failures.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
