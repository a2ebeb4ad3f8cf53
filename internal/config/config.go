package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	Env     string
	HTTP    HTTPConfig
	Store   StoreConfig
	Stats   StatsConfig
	Logging LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// StoreConfig describes connectivity to the document store backing the
// dashboard (Firestore, or the in-memory driver for local runs).
type StoreConfig struct {
	Driver                 string // firestore|memory
	ProjectID              string
	CredentialsFile        string
	UsersCollection        string
	TransactionsCollection string
}

// StatsConfig tunes the aggregation scan.
type StatsConfig struct {
	ScanWorkers    int
	PerUserTxLimit int
	RecentTxLimit  int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultEnv             = "production"
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultStoreDriver     = "firestore"
	defaultUsersCollection = "users"
	defaultTxCollection    = "transactions"
	defaultScanWorkers     = 1
	defaultPerUserTxLimit  = 1000
	defaultRecentTxLimit   = 10
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Env: valueOrDefault("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Store: StoreConfig{
			Driver:                 valueOrDefault("STORE_DRIVER", defaultStoreDriver),
			ProjectID:              os.Getenv("FIRESTORE_PROJECT_ID"),
			CredentialsFile:        os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
			UsersCollection:        valueOrDefault("STORE_USERS_COLLECTION", defaultUsersCollection),
			TransactionsCollection: valueOrDefault("STORE_TRANSACTIONS_COLLECTION", defaultTxCollection),
		},
		Stats: StatsConfig{
			ScanWorkers:    parseIntWithDefault("STATS_SCAN_WORKERS", defaultScanWorkers),
			PerUserTxLimit: parseIntWithDefault("STATS_PER_USER_TX_LIMIT", defaultPerUserTxLimit),
			RecentTxLimit:  parseIntWithDefault("STATS_RECENT_TX_LIMIT", defaultRecentTxLimit),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	for _, t := range []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
	} {
		if v := os.Getenv(t.key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", t.key, err)
			}
			*t.dst = d
		}
	}

	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	if cfg.Stats.ScanWorkers < 1 {
		cfg.Stats.ScanWorkers = 1
	}
	if cfg.Stats.PerUserTxLimit < 1 {
		cfg.Stats.PerUserTxLimit = defaultPerUserTxLimit
	}
	if cfg.Stats.RecentTxLimit < 1 {
		cfg.Stats.RecentTxLimit = defaultRecentTxLimit
	}

	return cfg, nil
}

// IsDevelopment reports whether verbose error details may be exposed in HTTP
// responses.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
