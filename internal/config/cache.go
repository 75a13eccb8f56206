package config

import "time"

// CacheConfig controls the Redis response cache in front of the booking
// read endpoints.
//
//	CACHE_ENABLED        – "true" to cache (default true)
//	CACHE_TTL            – entry lifetime (default 30s)
//	CACHE_PREFIX         – key namespace (default "cache")
//	CACHE_MAX_BODY_BYTES – larger responses are not cached (default 1 MiB)
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CacheConfig from the environment.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
