package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.LateThresholdHour != 10 {
		t.Fatalf("expected default late threshold 10, got %d", cfg.LateThresholdHour)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default token ttl 12h, got %s", cfg.TokenTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("LATE_THRESHOLD_HOUR", "9")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %s", cfg.Addr)
	}
	if cfg.LateThresholdHour != 9 {
		t.Fatalf("expected late threshold 9, got %d", cfg.LateThresholdHour)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected invalid int to fall back to 120, got %d", cfg.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid development config",
			mutate: func(c *Config) { c.DatabaseURL = "postgres://localhost/erm" },
		},
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: true,
		},
		{
			name: "production requires jwt secret",
			mutate: func(c *Config) {
				c.DatabaseURL = "postgres://localhost/erm"
				c.Environment = "production"
				c.JWTSecret = ""
			},
			wantErr: true,
		},
		{
			name: "late threshold out of range",
			mutate: func(c *Config) {
				c.DatabaseURL = "postgres://localhost/erm"
				c.LateThresholdHour = 24
			},
			wantErr: true,
		},
		{
			name: "email enabled without smtp host",
			mutate: func(c *Config) {
				c.DatabaseURL = "postgres://localhost/erm"
				c.EmailEnabled = true
				c.SMTPHost = ""
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
