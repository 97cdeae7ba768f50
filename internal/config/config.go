package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"` // public URL encoded into leaderboard QR codes
	// Public endpoints are limited per client IP
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds admin authentication settings
type AuthConfig struct {
	AdminPassword string        `yaml:"admin_password"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

// RedisConfig holds the optional session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	HTTP   bool   `yaml:"http"`
}

// Default returns the configuration used when nothing else is provided
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8081",
			RateLimit: 10,
			RateBurst: 20,
		},
		Database: DatabaseConfig{Path: "fitlo.db"},
		Auth:     AuthConfig{SessionTTL: 24 * time.Hour},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML file over the defaults, then applies FITLO_* environment
// overrides. A missing file is not an error; an empty filename skips the file.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("FITLO_ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup("FITLO_BASE_URL"); ok && v != "" {
		cfg.Server.BaseURL = v
	}
	if v, ok := lookup("FITLO_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FITLO_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	if v, ok := lookup("FITLO_DB"); ok && v != "" {
		cfg.Database.Path = v
	}
	if v, ok := lookup("FITLO_ADMIN_PASSWORD"); ok && v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v, ok := lookup("FITLO_SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FITLO_SESSION_TTL: %w", err)
		}
		cfg.Auth.SessionTTL = d
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		cfg.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok && v != "" {
		cfg.Redis.Password = v
	}
	if v, ok := lookup("FITLO_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("FITLO_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := lookup("FITLO_HTTP_LOG"); ok && v != "" {
		cfg.Log.HTTP = v == "true" || v == "1"
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("server rate limits must not be negative")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	return nil
}
