package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, populated from environment variables.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	DataDir   string `env:"DATA_DIR" envDefault:"./data"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./data/uploads"`

	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"` // 5MB

	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"15m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"30m"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	LoginRateRPS   float64 `env:"LOGIN_RATE_RPS" envDefault:"0.2"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; a missing .env is the normal case.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config env: %w", err)
	}
	return cfg, nil
}

// SnapshotPath is the location of the snapshot file inside the data directory.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "store.json")
}

// CachePath is the location of the gallery cache file inside the data directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.json")
}
