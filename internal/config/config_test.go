package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("DB_USER", "lunchly")
    t.Setenv("DB_PASS", "")
    t.Setenv("DB_HOST", "127.0.0.1")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "lunchly")
    t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")

    cfg := Load()
    assert.Equal(t, "test", cfg.Env)
    assert.Equal(t, "8080", cfg.Port)
    assert.Equal(t, "", cfg.DBPass)
    assert.Equal(t, "UTC", cfg.TimeZone)
    assert.Equal(t, "", cfg.JWTSecret)
    assert.Equal(t, 15, cfg.AccessTTLMin)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
    assert.Equal(t, 30*time.Second, cfg.TTL)
    assert.Equal(t, "path_query", cfg.KeyStrategy)
    assert.Equal(t, "lunchly:cache", cfg.Prefix)
}

func TestLoadCacheConfigOverrides(t *testing.T) {
    t.Setenv("CACHE_ENABLED", "off")
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "bogus")

    cfg := LoadCacheConfig()
    assert.False(t, cfg.Enabled)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
    assert.Equal(t, time.Second, cfg.TTL)
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    cfg := LoadRateLimitConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, RateScopeTarget, cfg.Scope)
    assert.Equal(t, 10, cfg.Burst)
    assert.Equal(t, 6*time.Second, cfg.RefillEvery)
    assert.Equal(t, "lunchly:rl", cfg.Prefix)
    assert.Equal(t, 66*time.Second, cfg.IdleTTL())
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_SCOPE", "everyone")
    t.Setenv("RATE_LIMIT_BURST", "0")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "-3s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, RateScopeTarget, cfg.Scope)
    assert.Equal(t, 1, cfg.Burst)
    assert.Equal(t, time.Second, cfg.RefillEvery)
}

func TestLoadRateLimitConfigStaffScope(t *testing.T) {
    t.Setenv("RATE_LIMIT_SCOPE", "Staff")
    t.Setenv("RATE_LIMIT_BURST", "3")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, RateScopeStaff, cfg.Scope)
    assert.Equal(t, 3, cfg.Burst)
}

func TestLoadQueueConfig(t *testing.T) {
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

    cfg := LoadQueueConfig()
    assert.Equal(t, "amqp://u:p@broker:5672/", cfg.URL)
    assert.Equal(t, "reservation.saved", cfg.QueueName)
    assert.Equal(t, "logs", cfg.LogDir)
    assert.True(t, cfg.Consumer)
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    t.Setenv("REDIS_DB", "2")
    opts := RedisOptions()
    assert.Equal(t, "cache:6380", opts.Addr)
    assert.Equal(t, 2, opts.DB)
    assert.Nil(t, opts.TLSConfig)

    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6379")
    t.Setenv("REDIS_TLS", "1")
    opts = RedisOptions()
    assert.Equal(t, "redis:6379", opts.Addr)
    assert.NotNil(t, opts.TLSConfig)
}
