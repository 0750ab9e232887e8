package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig drives the response cache on the film listing endpoints.
// Only successful GET responses are cached; entries live for TTL and are
// keyed by route and query string under Prefix. Disabled entirely when
// Enabled is false or no Redis client is available.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCache reads FILM_CACHE_* variables. Caching defaults to on with a
// short TTL; film listings tolerate brief staleness.
func LoadCache() CacheConfig {
	enabled := true
	if v := os.Getenv("FILM_CACHE_ENABLED"); v != "" {
		enabled = strings.EqualFold(v, "true") || v == "1"
	}
	ttl := 30 * time.Second
	if v := os.Getenv("FILM_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	maxBody := 1 << 20
	if v := os.Getenv("FILM_CACHE_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxBody = n
		}
	}
	prefix := os.Getenv("FILM_CACHE_PREFIX")
	if prefix == "" {
		prefix = "filmcache"
	}
	return CacheConfig{Enabled: enabled, TTL: ttl, Prefix: prefix, MaxBodyBytes: maxBody}
}
