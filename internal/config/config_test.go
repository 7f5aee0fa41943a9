package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "DATABASE_DSN", "JWT_SECRET", "APP_ENV",
		"ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_DAYS",
		"PRESENCE_TIMEOUT_MINUTES", "PRESENCE_SWEEP_MINUTES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.AccessTokenTTLMinutes != 15 {
		t.Errorf("AccessTokenTTLMinutes = %d, want 15", cfg.AccessTokenTTLMinutes)
	}
	if cfg.PresenceTimeout != 5*time.Minute {
		t.Errorf("PresenceTimeout = %v, want 5m", cfg.PresenceTimeout)
	}
	if cfg.PresenceSweepInterval != 5*time.Minute {
		t.Errorf("PresenceSweepInterval = %v, want 5m", cfg.PresenceSweepInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PRESENCE_TIMEOUT_MINUTES", "10")
	t.Setenv("PRESENCE_SWEEP_MINUTES", "2")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.PresenceTimeout != 10*time.Minute {
		t.Errorf("PresenceTimeout = %v, want 10m", cfg.PresenceTimeout)
	}
	if cfg.PresenceSweepInterval != 2*time.Minute {
		t.Errorf("PresenceSweepInterval = %v, want 2m", cfg.PresenceSweepInterval)
	}
}

func TestLoad_InvalidIntsFallBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "zero")
	t.Setenv("PRESENCE_TIMEOUT_MINUTES", "-3")

	cfg := Load()
	if cfg.AccessTokenTTLMinutes != 15 {
		t.Errorf("AccessTokenTTLMinutes = %d, want default 15", cfg.AccessTokenTTLMinutes)
	}
	if cfg.PresenceTimeout != 5*time.Minute {
		t.Errorf("PresenceTimeout = %v, want default 5m", cfg.PresenceTimeout)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:                  "8080",
		DatabaseDSN:           "host=db",
		JWTSecret:             "prod-secret",
		Env:                   "prod",
		PresenceTimeout:       5 * time.Minute,
		PresenceSweepInterval: 5 * time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"default secret in dev", func(c *Config) { c.Env = "dev"; c.JWTSecret = "dev-secret-change-me" }, false},
		{"default secret in prod", func(c *Config) { c.JWTSecret = "dev-secret-change-me" }, true},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero presence timeout", func(c *Config) { c.PresenceTimeout = 0 }, true},
		{"zero sweep interval", func(c *Config) { c.PresenceSweepInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := Validate(cfg); (err != nil) != tt.wantErr {
				t.Errorf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
