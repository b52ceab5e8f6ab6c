package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pocketbudget/internal/log"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	// Backend selection
	DataBackend string

	// Storage
	SQLiteDBPath string
	KVDBPath     string

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reset worker
	ResetInterval time.Duration

	// Activity log retention; 0 keeps every entry
	ActivityLogMaxEntries int

	LogLevel string
}

func Load() *Config {
	return &Config{
		DataBackend: getEnv("DATA_BACKEND", BackendSQLite),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/pocketbudget.db"),
		KVDBPath:     getEnv("KV_DB_PATH", "./data/kv.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pocketbudget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		ResetInterval: getEnvDuration("RESET_INTERVAL", time.Minute),

		ActivityLogMaxEntries: getEnvInt("ACTIVITY_LOG_MAX_ENTRIES", 1000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// AMQPEnabled reports whether ledger events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks every setting and reports all problems at once. Missing
// database directories are created.
func (c *Config) Validate() error {
	var errors []string

	switch c.DataBackend {
	case BackendSQLite:
		for _, p := range []struct{ name, path string }{
			{"SQLite database", c.SQLiteDBPath},
			{"key-value database", c.KVDBPath},
		} {
			if p.path == "" {
				errors = append(errors, fmt.Sprintf("%s path cannot be empty when using sqlite backend", p.name))
				continue
			}
			if err := ensureDir(p.path); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create %s directory: %v", p.name, err))
			}
		}
		if c.SQLiteDBPath != "" && c.SQLiteDBPath == c.KVDBPath {
			errors = append(errors, "SQLite database and key-value database must be different files")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendSQLite, BackendMemory))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ResetInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reset interval %v: must be at least 1 second", c.ResetInterval))
	} else if c.ResetInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid reset interval %v: must be at most 24 hours", c.ResetInterval))
	}

	if c.ActivityLogMaxEntries < 0 {
		errors = append(errors, fmt.Sprintf("invalid activity log max entries %d: must be 0 (unbounded) or positive", c.ActivityLogMaxEntries))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
