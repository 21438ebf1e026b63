package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the complete application configuration, loadable from
// environment variables (DELIVERY_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (DELIVERY_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Store       StoreConfig
	Orders      OrdersConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string `default:"postgres" env:"DRIVER" usage:"Store driver: postgres or sqlite" flag:"store-driver"`
	SQLitePath string `default:"delivery.db" env:"SQLITE_PATH" usage:"SQLite database file, :memory: for a transient store" flag:"sqlite-path"`
}

// OrdersConfig holds order placement rules.
type OrdersConfig struct {
	MaxQuantity int `default:"100" env:"MAX_QUANTITY" usage:"Maximum quantity of a single order line" flag:"max-quantity"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Max      int           `default:"100" usage:"Max requests per window"`
	Window   time.Duration `default:"1m"  usage:"Time for an exhausted bucket to refill"`
	WriteMax int           `default:"30"  usage:"Max mutating requests per window, 0 to share the read budget" flag:"ratelimit-write-max"`
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

// LoadConfig loads configuration from command-line flags, environment
// variables and YAML config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	cfg, err := load(false)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvConfig is LoadConfig without flag parsing, for tools that own
// their command line. The result is not validated so callers can apply
// overrides first.
func LoadEnvConfig() (*Config, error) {
	return load(true)
}

func load(skipFlags bool) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "DELIVERY",
		SkipFlags: skipFlags,
		Files:     []string{"config.yaml", "/etc/delivery/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.RateLimit.Max < 1 || c.RateLimit.Window <= 0 {
		return errors.Errorf("rate limit needs a positive max and window, got %d per %s", c.RateLimit.Max, c.RateLimit.Window)
	}
	return nil
}

// ValidateStore checks only what OpenStore and the domain services need.
func (c *Config) ValidateStore() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set DELIVERY_DATABASE_URL or DATABASE_URL")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite path is required: set DELIVERY_STORE_SQLITE_PATH")
		}
	default:
		return errors.Errorf("unknown store driver %q: want %s or %s", c.Store.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Orders.MaxQuantity < 1 {
		return errors.Errorf("orders max quantity must be positive, got %d", c.Orders.MaxQuantity)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's DELIVERY_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
