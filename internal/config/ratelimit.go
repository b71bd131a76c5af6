package config

import (
    "strings"
    "time"
)

// Rate limit scopes.  RateScopeTarget gives every customer (on create) and
// every reservation (on update) its own bucket; RateScopeStaff shares one
// bucket across all writes of a staff member.
const (
    RateScopeTarget = "target"
    RateScopeStaff  = "staff"
)

// RateLimitConfig tunes the Redis token bucket in front of the reservation
// write endpoints.
type RateLimitConfig struct {
    Enabled     bool
    Scope       string
    Burst       int           // writes allowed back to back
    RefillEvery time.Duration // one write regained per interval
    Prefix      string
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_SCOPE,
// RATE_LIMIT_BURST, RATE_LIMIT_REFILL_EVERY and RATE_LIMIT_PREFIX.  Unknown
// scopes fall back to RateScopeTarget.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        Scope:       strings.ToLower(envStr("RATE_LIMIT_SCOPE", RateScopeTarget)),
        Burst:       envInt("RATE_LIMIT_BURST", 10),
        RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 6*time.Second),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "lunchly:rl"),
    }
    if cfg.Scope != RateScopeStaff {
        cfg.Scope = RateScopeTarget
    }
    if cfg.Burst < 1 {
        cfg.Burst = 1
    }
    if cfg.RefillEvery <= 0 {
        cfg.RefillEvery = time.Second
    }
    return cfg
}

// IdleTTL is how long an untouched bucket is kept: long enough to refill.
func (c RateLimitConfig) IdleTTL() time.Duration {
    return time.Duration(c.Burst+1) * c.RefillEvery
}
