package config

import (
	"os"
	"strconv"

	"github.com/dfryer1193/imagevault/shared/db/sqlite"
)

const defaultPort = 8080

// Config holds the server configuration, loaded from the environment.
type Config struct {
	Port     int
	LogLevel string
	SQLite   *sqlite.SQLiteConfig
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() *Config {
	port := defaultPort
	if v := os.Getenv("VAULT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			port = p
		}
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return &Config{
		Port:     port,
		LogLevel: level,
		SQLite:   sqlite.NewSQLiteConfig(),
	}
}
