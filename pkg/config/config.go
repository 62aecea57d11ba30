// Package config loads cybergraph settings from a TOML file.
//
// A missing file yields [Default]. Environment variables prefixed with
// CYBERGRAPH_ override the cache backend settings so that credentials can
// stay out of the file; a .env file in the working directory is read first
// and never overrides variables already set.
//
//	[visual]
//	node_color = "skyblue"
//	node_size = 3000
//
//	[render]
//	layout = "spring"
//	format = "svg"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
	"github.com/matzehuels/cybergraph/pkg/render/nodelink"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds all settings.
type Config struct {
	Visual  nodelink.Style `toml:"visual"`
	Render  RenderConfig   `toml:"render"`
	Heatmap HeatmapConfig  `toml:"heatmap"`
	Graph   GraphConfig    `toml:"graph"`
	Cache   CacheConfig    `toml:"cache"`
	Server  ServerConfig   `toml:"server"`
}

// RenderConfig holds defaults for the visualize command and the server.
type RenderConfig struct {
	Layout string `toml:"layout"`
	Format string `toml:"format"`
	Title  string `toml:"title"`
	// Seed fixes the random layout; 0 draws fresh positions on every render.
	Seed uint64 `toml:"seed"`
}

// HeatmapConfig holds heatmap defaults.
type HeatmapConfig struct {
	Metric string `toml:"metric"`
}

// GraphConfig controls the graph store.
type GraphConfig struct {
	// Path is the graph document the CLI operates on.
	Path string `toml:"path"`
	// StrictRelationships rejects relationships to unknown entities instead
	// of creating them.
	StrictRelationships bool `toml:"strict_relationships"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword Secret   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MemoryEntries int      `toml:"memory_entries"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Visual: nodelink.DefaultStyle(),
		Render: RenderConfig{
			Layout: string(nodelink.Spring),
			Format: string(nodelink.SVG),
			Title:  nodelink.DefaultTitle,
		},
		Heatmap: HeatmapConfig{Metric: "vulnerability_score"},
		Graph:   GraphConfig{Path: "graph.json"},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			RedisAddr:     "localhost:6379",
			MemoryEntries: cache.DefaultMemoryEntries,
			Prefix:        "cybergraph:",
			TTL:           Duration(24 * time.Hour),
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/cybergraph/config.toml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cybergraph", "config.toml"), nil
}

// Load reads the file at path over [Default]. An empty path searches
// [DefaultPath]; a missing default file is not an error, a missing explicit
// file is. Environment overrides (including ./.env) are applied last and
// the result is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "config file %s", path)
		case err != nil:
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "parse config %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over [Default] and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("CYBERGRAPH_CACHE_BACKEND"); ok {
		c.Cache.Backend = v
	}
	if v, ok := os.LookupEnv("CYBERGRAPH_REDIS_ADDR"); ok {
		c.Cache.RedisAddr = v
	}
	if v, ok := os.LookupEnv("CYBERGRAPH_REDIS_PASSWORD"); ok {
		c.Cache.RedisPassword = Secret(v)
	}
	if v, ok := os.LookupEnv("CYBERGRAPH_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "CYBERGRAPH_REDIS_DB must be an integer")
		}
		c.Cache.RedisDB = db
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.validateVisual(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := cgerrors.ValidateAttributeKey(c.Heatmap.Metric); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "heatmap.metric")
	}
	if strings.TrimSpace(c.Graph.Path) == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "graph.path must not be empty")
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	return nil
}

func (c *Config) validateVisual() error {
	v := c.Visual
	for name, val := range map[string]float64{
		"node_size": v.NodeSize,
		"font_size": v.FontSize,
		"width":     v.Width,
		"height":    v.Height,
	} {
		if val <= 0 {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "visual.%s must be positive, got %v", name, val)
		}
	}
	return nil
}

func (c *Config) validateRender() error {
	if _, ok := nodelink.LookupLayout(c.Render.Layout); !ok {
		return cgerrors.New(cgerrors.ErrCodeInvalidLayout, "render.layout %q is not one of %v", c.Render.Layout, nodelink.Layouts)
	}
	if _, err := nodelink.ParseFormat(c.Render.Format); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "render.format")
	}
	if err := cgerrors.ValidateTitle(c.Render.Title); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.backend %q must be file, memory, redis or none", c.Cache.Backend)
	}
	if c.Cache.MemoryEntries < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.memory_entries must not be negative")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.RedisDB < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.redis_db must not be negative")
	}
	if c.Cache.TTL < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword.Value(),
		RedisDB:       c.Cache.RedisDB,
		MemoryEntries: c.Cache.MemoryEntries,
	}
}

// TTL returns the cache entry lifetime.
func (c *Config) TTL() time.Duration { return time.Duration(c.Cache.TTL) }

// ViewOptions returns the configured render defaults as pipeline options.
// Callers override fields from flags or query parameters.
func (c *Config) ViewOptions() pipeline.Options {
	return pipeline.Options{
		Layout: c.Render.Layout,
		Title:  c.Render.Title,
		Format: c.Render.Format,
		Metric: c.Heatmap.Metric,
		Seed:   c.Render.Seed,
		Style:  c.Visual,
	}
}

// Describe returns the effective settings as TOML with secrets redacted.
func (c *Config) Describe() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
