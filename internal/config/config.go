package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the importer.
type Config struct {
	Env      string
	Database DatabaseConfig
	Importer ImporterConfig
	Redis    RedisConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ImporterConfig struct {
	// SourceRoot is the directory holding the dated batch folders.
	SourceRoot string
	// RosterFile maps extensions to agent name/email triples.
	RosterFile    string
	MigrationsDir string
}

type RedisConfig struct {
	// URL is optional; when empty the stats command skips caching.
	URL      string
	StatsTTL time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Env: envString("QAIMPORT_ENV", "development"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Importer: ImporterConfig{
			SourceRoot:    os.Getenv("QAIMPORT_SOURCE_ROOT"),
			RosterFile:    envString("QAIMPORT_ROSTER_FILE", "ExtList.data"),
			MigrationsDir: envString("QAIMPORT_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			StatsTTL: envDuration("QAIMPORT_STATS_CACHE_TTL", 15*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
