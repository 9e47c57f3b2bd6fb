package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	return cfg
}

func TestDefaultConfigRequiresSecret(t *testing.T) {
	// The one setting with no safe default is the signing secret
	if err := DefaultConfig().Validate(); err == nil {
		t.Error("defaults without an auth secret must not validate")
	}
	if err := validConfig().Validate(); err != nil {
		t.Errorf("defaults with a secret must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero database timeout", func(c *Config) { c.Database.Timeout = 0 }},
		{"port too low", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }},
		{"empty host", func(c *Config) { c.HTTP.Host = "" }},
		{"zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }},
		{"zero buffer size", func(c *Config) { c.WebSocket.BufferSize = 0 }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"nil auth section", func(c *Config) { c.Auth = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLOUDCHAT_HTTP_PORT", "9090")
	t.Setenv("CLOUDCHAT_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("CLOUDCHAT_AUTH_SECRET", "env-secret")
	t.Setenv("CLOUDCHAT_AUTH_TOKEN_TTL", "24h")
	t.Setenv("CLOUDCHAT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CLOUDCHAT_WEBSOCKET_PING_INTERVAL", "15s")

	cfg := LoadFromEnv()

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path = %s", cfg.Database.Path)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("auth secret not loaded")
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("redis url = %s", cfg.Redis.URL)
	}
	if cfg.WebSocket.PingInterval != 15*time.Second {
		t.Errorf("ping interval = %v, want 15s", cfg.WebSocket.PingInterval)
	}

	// Untouched settings keep their defaults
	if cfg.HTTP.Host != "0.0.0.0" {
		t.Errorf("host default lost: %s", cfg.HTTP.Host)
	}
}

func TestLoadFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CLOUDCHAT_HTTP_PORT", "not-a-number")
	t.Setenv("CLOUDCHAT_AUTH_TOKEN_TTL", "not-a-duration")

	cfg := LoadFromEnv()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("malformed port must fall back to default, got %d", cfg.HTTP.Port)
	}
	if cfg.Auth.TokenTTL != 72*time.Hour {
		t.Errorf("malformed ttl must fall back to default, got %v", cfg.Auth.TokenTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"database": {"path": "/data/chat.db", "timeout": "45s"},
		"http": {"port": 3000, "host": "127.0.0.1"},
		"websocket": {"ping_interval": "20s"},
		"auth": {"secret": "file-secret", "token_ttl": "12h"},
		"redis": {"url": "redis://cache:6379"}
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Database.Path != "/data/chat.db" {
		t.Errorf("database path = %s", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 45*time.Second {
		t.Errorf("database timeout = %v", cfg.Database.Timeout)
	}
	if cfg.HTTP.Port != 3000 || cfg.HTTP.Host != "127.0.0.1" {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.WebSocket.PingInterval != 20*time.Second {
		t.Errorf("ping interval = %v", cfg.WebSocket.PingInterval)
	}
	if cfg.Auth.Secret != "file-secret" || cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Redis.URL != "redis://cache:6379" {
		t.Errorf("redis url = %s", cfg.Redis.URL)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.json"); err == nil {
		t.Error("missing file must error")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("malformed JSON must error")
	}

	// A file missing the secret fails validation
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(empty); err == nil {
		t.Error("config without a secret must fail validation")
	}
}
