package engine

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewConfig("http://localhost:8080")
	return cfg
}

func TestConfig_ValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got: %v", err)
	}
}

func TestConfig_ValidateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty url", func(c *Config) { c.TargetURL = "" }, "url"},
		{"bad scheme", func(c *Config) { c.TargetURL = "ftp://example.com" }, "url"},
		{"no host", func(c *Config) { c.TargetURL = "http://" }, "url"},
		{"bad method", func(c *Config) { c.Method = "FETCH" }, "method"},
		{"zero users", func(c *Config) { c.ConcurrentUsers = 0 }, "users"},
		{"negative users", func(c *Config) { c.ConcurrentUsers = -1 }, "users"},
		{"too many users", func(c *Config) { c.ConcurrentUsers = MaxConcurrentUsers + 1 }, "users"},
		{"zero requests", func(c *Config) { c.RequestsPerUser = 0 }, "requests"},
		{"too many requests", func(c *Config) { c.RequestsPerUser = MaxRequestsPerUser + 1 }, "requests"},
		{"plan too large", func(c *Config) {
			c.ConcurrentUsers = 1000
			c.RequestsPerUser = 10000
		}, "requests"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "timeout"},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }, "delay"},
		{"zero pool", func(c *Config) { c.MaxPoolSize = 0 }, "pool"},
		{"huge pool", func(c *Config) { c.MaxPoolSize = MaxPoolSizeLimit + 1 }, "pool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Expected validation error, got nil")
			}

			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Expected *ConfigError, got %T: %v", err, err)
			}
			if cerr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, cerr.Field)
			}
		})
	}
}

func TestConfig_PlannedRequests(t *testing.T) {
	cfg := validConfig()
	cfg.ConcurrentUsers = 7
	cfg.RequestsPerUser = 3

	if got := cfg.PlannedRequests(); got != 21 {
		t.Errorf("Expected 21 planned requests, got %d", got)
	}
}

func TestConfig_Parallelism(t *testing.T) {
	cfg := validConfig()

	cfg.ConcurrentUsers = 10
	cfg.MaxPoolSize = 50
	if got := cfg.Parallelism(); got != 10 {
		t.Errorf("Expected parallelism 10, got %d", got)
	}

	cfg.ConcurrentUsers = 100
	cfg.MaxPoolSize = 20
	if got := cfg.Parallelism(); got != 20 {
		t.Errorf("Expected parallelism 20, got %d", got)
	}
}

func TestConfig_EffectiveDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.EffectiveMethod(); got != "GET" {
		t.Errorf("Expected GET, got %s", got)
	}
	if got := cfg.EffectiveUserAgent(); got != DefaultUserAgent {
		t.Errorf("Expected %s, got %s", DefaultUserAgent, got)
	}
}
