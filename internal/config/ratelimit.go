package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ThrottleConfig drives the fixed-window throttle on the login endpoint.
// Each client IP gets MaxAttempts login calls per Window; further calls
// are rejected with 429 until the window rolls over. This blunts
// credential brute-forcing without any account lockout state.
type ThrottleConfig struct {
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// LoadThrottle reads LOGIN_THROTTLE_* variables with defaults of ten
// attempts per five minutes.
func LoadThrottle() ThrottleConfig {
	enabled := true
	if v := os.Getenv("LOGIN_THROTTLE_ENABLED"); v != "" {
		enabled = strings.EqualFold(v, "true") || v == "1"
	}
	max := 10
	if v := os.Getenv("LOGIN_THROTTLE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	window := 5 * time.Minute
	if v := os.Getenv("LOGIN_THROTTLE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = time.Duration(n) * time.Second
		}
	}
	prefix := os.Getenv("LOGIN_THROTTLE_PREFIX")
	if prefix == "" {
		prefix = "loginthrottle"
	}
	return ThrottleConfig{Enabled: enabled, MaxAttempts: max, Window: window, Prefix: prefix}
}
