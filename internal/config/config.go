// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the server needs to start. Using a struct (instead
// of reading env vars all over the codebase) keeps configuration in one place
// and makes the server constructible from tests.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string
	AdminKey      string
	StaticDir     string
	CORSOrigins   []string
	SecureCookies bool
}

// Load reads configuration from the environment, applying defaults where a
// variable is unset. It returns an error for values that are present but
// unparseable, rather than silently falling back.
func Load() (Config, error) {
	cfg := Config{
		Port:          8080,
		DBPath:        "data/zange.db",
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AdminKey:      os.Getenv("ADMIN_KEY"),
		StaticDir:     os.Getenv("STATIC_DIR"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	// Comma-separated list of allowed origins for browser clients.
	// Empty means same-origin only (the static frontend served by us).
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if secure := os.Getenv("SECURE_COOKIES"); secure != "" {
		v, err := strconv.ParseBool(secure)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SECURE_COOKIES %q: %w", secure, err)
		}
		cfg.SecureCookies = v
	}

	return cfg, nil
}
