// Package config loads application configuration from environment
// variables. Required variables abort startup via must(); operational
// knobs fall back to safe defaults.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign session tokens
	TokenTTLHours int    // session token time-to-live in hours (reference: 24)
	BcryptCost    int    // bcrypt cost for password hashing
	AdminUsername string // default admin seeded at first boot
	AdminPassword string // default admin password; rotate after first login
	UploadDir     string // directory for uploaded poster images
}

// Load reads configuration values from environment variables and returns
// a Config. Missing required variables cause a fatal startup error.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		TokenTTLHours: mustInt("TOKEN_TTL_HOURS"),
		BcryptCost:    mustInt("BCRYPT_COST"),
		AdminUsername: envDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: envDefault("ADMIN_PASSWORD", "CineForum2024!"),
		UploadDir:     envDefault("UPLOAD_DIR", "uploads"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envDefault reads an optional variable, falling back to def when unset.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
