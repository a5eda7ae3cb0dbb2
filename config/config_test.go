package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "GRADEBOOK_SEED", "REDIS_ENABLED", "LOG_FORMAT", "REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gradebook", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "gradebook:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Redis.RankingTTL)
	assert.Equal(t, 30*time.Second, cfg.Redis.MirrorCooldown)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("GRADEBOOK_SEED", "testdata/seed.yaml")
	t.Setenv("GRADEBOOK_SEED_STRICT", "true")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_RANKING_TTL", "90s")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "testdata/seed.yaml", cfg.Seed.Path)
	assert.True(t, cfg.Seed.Strict)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 90*time.Second, cfg.Redis.RankingTTL)
	assert.Equal(t, "console", cfg.Observability.LogFormat)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("REDIS_DIAL_TIMEOUT", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.False(t, cfg.Redis.Enabled)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		App:  AppConfig{Environment: "qa"},
		Seed: SeedConfig{Path: "seed.json"},
		Redis: RedisConfig{
			Enabled:         true,
			Host:            "localhost",
			Port:            0,
			ConnectAttempts: 0,
		},
		Observability: ObservabilityConfig{LogFormat: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "APP_ENV")
	assert.Contains(t, msg, "GRADEBOOK_SEED")
	assert.Contains(t, msg, "REDIS_PORT")
	assert.Contains(t, msg, "REDIS_CONNECT_ATTEMPTS")
	assert.Contains(t, msg, "LOG_FORMAT")
}

func TestHasSeedExtension(t *testing.T) {
	assert.True(t, HasSeedExtension("data/seed.HCL"))
	assert.True(t, HasSeedExtension("seed.yml"))
	assert.True(t, HasSeedExtension("seed.yaml"))
	assert.False(t, HasSeedExtension("seed.toml"))
}
