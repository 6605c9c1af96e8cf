// Package config loads bullet's settings with viper.
//
// Settings are resolved in order: built-in defaults, then an optional TOML
// file, then BULLET_* environment variables. The file is bullet.toml in the
// working directory, $XDG_CONFIG_HOME/bullet or /etc/bullet, unless a path
// is given explicitly:
//
//	[render]
//	theme = "dark"
//	formats = ["svg", "png"]
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
// Environment variables replace dots with underscores, so cache.redis.addr
// is BULLET_CACHE_REDIS_ADDR.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/bullet/pkg/cache"
	"github.com/matzehuels/bullet/pkg/render/styles"
)

const (
	appName   = "bullet"
	envPrefix = "BULLET"
)

// Config is the complete application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Render RenderConfig `mapstructure:"render"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

type RenderConfig struct {
	Width   int      `mapstructure:"width"`
	Height  int      `mapstructure:"height"`
	Theme   string   `mapstructure:"theme"`
	VizType string   `mapstructure:"viz_type"`
	Formats []string `mapstructure:"formats"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // none, file, redis, mongo
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load reads the configuration. An empty path searches the default
// locations and tolerates a missing file; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(configHome(), appName))
		v.AddConfigPath(filepath.Join("/etc", appName))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("render.width", 600)
	v.SetDefault("render.height", 72)
	v.SetDefault("render.theme", styles.NameLight)
	v.SetDefault("render.viz_type", "bullet")
	v.SetDefault("render.formats", []string{"svg"})

	v.SetDefault("cache.backend", cache.BackendFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.prefix", appName+":")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("cache.mongo.database", appName)
	v.SetDefault("cache.mongo.collection", "cache")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
}

// Validate checks values that have a closed set of choices.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, ok := styles.ByName(c.Render.Theme); !ok {
		return fmt.Errorf("render.theme: unknown theme %q (must be one of: %s)",
			c.Render.Theme, strings.Join(styles.Names(), ", "))
	}
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl: must not be negative")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Prefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/bullet/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}
