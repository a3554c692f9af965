package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIURL is the root of the upstream REST service.
	APIURL string `env:"API_URL, default=http://localhost:3000/api"`

	Session SessionConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Dev reports whether the gateway runs in development mode.
func (c *Config) Dev() bool { return c.Env == "development" }

type SessionConfig struct {
	// Backend is "memory", "redis" or "mongo".
	Backend      string        `env:"SESSION_BACKEND,  default=memory"`
	TTL          time.Duration `env:"SESSION_TTL,      default=168h"`
	CookieSecure bool          `env:"COOKIE_SECURE,    default=false"`
	// LoginRateLimit is the accepted login attempts per second per client IP.
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT, default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads a .env file when present, then the environment, using
// go-envconfig.
func Load() *Config {
	_ = godotenv.Load()
	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse reads configuration from l and validates it.
func Parse(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	switch cfg.Session.Backend {
	case "memory", "redis", "mongo":
	default:
		return nil, fmt.Errorf("SESSION_BACKEND must be memory, redis or mongo, got %q", cfg.Session.Backend)
	}
	if cfg.Session.LoginRateLimit <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	return &cfg, nil
}
