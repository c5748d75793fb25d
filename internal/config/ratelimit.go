package config

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig configures the redis token bucket guarding the
// registration and login endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the rate_limit.* keys and clamps them to usable
// values.
func LoadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 10)
	v.SetDefault("rate_limit.refill_tokens", 1)
	v.SetDefault("rate_limit.refill_interval", "6s")
	v.SetDefault("rate_limit.ttl", "10m")
	v.SetDefault("rate_limit.key_strategy", "ip_route")
	v.SetDefault("rate_limit.prefix", "rl")
	v.SetDefault("rate_limit.debug", false)

	def := RateLimitConfig{
		Enabled:        v.GetBool("rate_limit.enabled"),
		Capacity:       v.GetInt("rate_limit.capacity"),
		RefillTokens:   v.GetInt("rate_limit.refill_tokens"),
		RefillInterval: v.GetDuration("rate_limit.refill_interval"),
		TTL:            v.GetDuration("rate_limit.ttl"),
		KeyStrategy:    v.GetString("rate_limit.key_strategy"),
		Prefix:         v.GetString("rate_limit.prefix"),
		Debug:          v.GetBool("rate_limit.debug"),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	// keep a bucket alive long enough to refill at least a few times
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
