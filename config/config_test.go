package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"DB_DSN", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
		"APP_ENV", "LOG_LEVEL", "APP_VERSION", "ID_SECRET", "PLUGINS_FILE", "PLUGINS_RELOAD_CRON",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ID_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 20.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "config/plugins.yaml", cfg.App.PluginsFile)
	assert.Equal(t, "0 */5 * * * *", cfg.App.PluginsReloadCron)
	assert.Equal(t, "postgres://postgres@localhost:5432/galaxy?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.Equal(t, 2, cfg.Database.MinConns)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ID_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("DB_DSN", "postgres://viz@db/viz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "postgres://viz@db/viz", cfg.Database.DSN())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ID_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "three")
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ID_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ID_SECRET")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Redis:    RedisConfig{CacheTTL: time.Minute},
			App:      AppConfig{IDSecret: "x"},
		}
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.App.IDSecret = string(make([]byte, 57))
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Host = ""
	assert.ErrorContains(t, cfg.Validate(), "DB_DSN")

	cfg = base()
	cfg.Redis.CacheTTL = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestDSN_EscapesPassword(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "viz", Password: "p@ss word", Name: "galaxy"}
	assert.Equal(t, "postgres://viz:p%40ss%20word@db:5433/galaxy?sslmode=disable", d.DSN())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, AppConfig{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, AppConfig{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, AppConfig{LogLevel: "loud"}.SlogLevel())
}
