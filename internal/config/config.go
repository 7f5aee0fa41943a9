package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	DatabaseDSN           string
	JWTSecret             string
	Env                   string
	AccessTokenTTLMinutes int
	RefreshTokenTTLDays   int
	PresenceTimeout       time.Duration
	PresenceSweepInterval time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:                  getenv("APP_PORT", "8080"),
		DatabaseDSN:           getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=boardsync port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:             getenv("JWT_SECRET", "dev-secret-change-me"),
		Env:                   getenv("APP_ENV", "dev"),
		AccessTokenTTLMinutes: getenvInt("ACCESS_TOKEN_TTL_MINUTES", 15),
		RefreshTokenTTLDays:   getenvInt("REFRESH_TOKEN_TTL_DAYS", 7),
		PresenceTimeout:       time.Duration(getenvInt("PRESENCE_TIMEOUT_MINUTES", 5)) * time.Minute,
		PresenceSweepInterval: time.Duration(getenvInt("PRESENCE_SWEEP_MINUTES", 5)) * time.Minute,
	}
}

// Validate rejects configurations that cannot run safely. The default JWT
// secret is only tolerated in dev.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port is required")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: database dsn is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwt secret is required")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("config: default jwt secret is not allowed outside dev")
	}
	if cfg.PresenceTimeout <= 0 || cfg.PresenceSweepInterval <= 0 {
		return errors.New("config: presence timeout and sweep interval must be positive")
	}
	return nil
}
