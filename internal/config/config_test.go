package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 65*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "gemini", cfg.Gateway.Provider)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 2, cfg.Gateway.MaxRetries)
	assert.Equal(t, "./data/api.key", cfg.Credential.KeyFile)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Telegram.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
gateway:
  provider: openai
  timeout: 45s
telegram:
  enabled: true
  bot_token: "123:abc"
  chat_id: "@cryptopulse"
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Gateway.Provider)
	assert.Equal(t, 45*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.Telegram.Enabled)
	assert.Equal(t, "@cryptopulse", cfg.Telegram.ChatID)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Defaults still apply to untouched sections.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("CRYPTOPULSE_SERVER_PORT", "7070")
	t.Setenv("CRYPTOPULSE_GATEWAY_PROVIDER", "openai")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Gateway.Provider)
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"unknown provider", func(c *Config) { c.Gateway.Provider = "anthropic" }},
		{"zero timeout", func(c *Config) { c.Gateway.Timeout = 0 }},
		{"negative retries", func(c *Config) { c.Gateway.MaxRetries = -1 }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimitRPS = 0 }},
		{"cache without addr", func(c *Config) { c.Cache.Enabled = true; c.Cache.Addr = "" }},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "x" }},
		{"telegram without chat id", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.BotToken = "x" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
