package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Catalog   CatalogConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// CatalogConfig selects where the product catalog comes from.
type CatalogConfig struct {
	// Source is "remote" (HTTP API) or "snapshot" (local file written by
	// the catalog-snapshot tool).
	Source       string        `default:"remote" usage:"Catalog source: remote or snapshot"`
	BaseURL      string        `default:"https://fakestoreapi.com" usage:"Remote catalog API base URL" flag:"catalog-url"`
	Timeout      time.Duration `default:"15s" usage:"Remote catalog request timeout"`
	RetryCount   int           `default:"3" usage:"Remote catalog request retries" flag:"catalog-retries"`
	SnapshotPath string        `default:"data/catalog.json.gz" usage:"Catalog snapshot file path" flag:"snapshot-path"`
}

// StorageConfig selects the cart persistence backend.
type StorageConfig struct {
	// Driver is one of file, redis, postgres, memory, none. "none" drops
	// writes and never restores anything.
	Driver      string `default:"file" usage:"Cart storage driver: file, redis, postgres, memory, none"`
	Path        string `default:"data/cart" usage:"Directory for the file driver" flag:"storage-path"`
	Key         string `default:"product-store" usage:"Storage key the cart record lives under" flag:"storage-key"`
	RedisURL    string `usage:"Redis connection URL (redis driver)" flag:"redis-url"`
	DatabaseURL string `usage:"PostgreSQL connection URL (postgres driver; STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected storage driver and catalog source are
// known and have the settings they need.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "memory", "none":
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("redis driver requires STOREFRONT_STORAGE_REDIS_URL")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("postgres driver requires STOREFRONT_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Catalog.Source {
	case "remote", "snapshot":
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) with standard names onto the STOREFRONT_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
	if c.Storage.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.Storage.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
