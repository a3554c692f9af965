package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Port != "8080" || cfg.APIURL != "http://localhost:3000/api" || !cfg.Dev() {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Session.Backend != "memory" || cfg.Session.TTL != 168*time.Hour || cfg.Session.LoginRateLimit != 5 {
		t.Fatalf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Mongo.Database != "backoffice" {
		t.Fatalf("unexpected store defaults %+v %+v", cfg.Redis, cfg.Mongo)
	}
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"API_URL":         "https://api.example.com/api",
		"SESSION_BACKEND": "redis",
		"SESSION_TTL":     "2h",
		"COOKIE_SECURE":   "true",
		"REDIS_DB":        "3",
	}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Dev() || cfg.APIURL != "https://api.example.com/api" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Session.Backend != "redis" || cfg.Session.TTL != 2*time.Hour || !cfg.Session.CookieSecure || cfg.Redis.DB != 3 {
		t.Fatalf("unexpected overrides %+v %+v", cfg.Session, cfg.Redis)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"backend":    {"SESSION_BACKEND": "postgres"},
		"rate limit": {"LOGIN_RATE_LIMIT": "0"},
		"ttl":        {"SESSION_TTL": "forever"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
