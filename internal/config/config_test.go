package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitlo.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":8081" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "fitlo.db" {
		t.Errorf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.Auth.SessionTTL)
	}
}

func TestLoadConfig_FromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  base_url: "https://scores.example.com"
database:
  path: "/data/comp.db"
auth:
  admin_password: "burpee-box-jump"
  session_ttl: 2h
redis:
  addr: "localhost:6379"
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.BaseURL != "https://scores.example.com" {
		t.Errorf("server config not loaded: %+v", cfg.Server)
	}
	if cfg.Database.Path != "/data/comp.db" {
		t.Errorf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Auth.AdminPassword != "burpee-box-jump" || cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("auth config not loaded: %+v", cfg.Auth)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected redis addr %q", cfg.Redis.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log config not loaded: %+v", cfg.Log)
	}
	// Unset keys keep their defaults
	if cfg.Server.RateBurst != 20 {
		t.Errorf("expected default burst, got %d", cfg.Server.RateBurst)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	env := map[string]string{
		"FITLO_ADDR":           ":7000",
		"FITLO_DB":             "env.db",
		"FITLO_ADMIN_PASSWORD": "from-env",
		"FITLO_SESSION_TTL":    "30m",
		"FITLO_RATE_LIMIT":     "2.5",
		"REDIS_ADDR":           "redis:6379",
		"FITLO_HTTP_LOG":       "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Database.Path != "env.db" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.Auth.AdminPassword != "from-env" || cfg.Auth.SessionTTL != 30*time.Minute {
		t.Errorf("auth overrides not applied: %+v", cfg.Auth)
	}
	if cfg.Server.RateLimit != 2.5 {
		t.Errorf("expected rate limit 2.5, got %v", cfg.Server.RateLimit)
	}
	if cfg.Redis.Addr != "redis:6379" || !cfg.Log.HTTP {
		t.Errorf("redis/log overrides not applied: %+v %+v", cfg.Redis, cfg.Log)
	}
}

func TestApplyEnv_BadDuration(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "FITLO_SESSION_TTL" {
			return "forever", true
		}
		return "", false
	}
	if err := applyEnv(Default(), lookup); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty db", func(c *Config) { c.Database.Path = "" }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
