package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds all Lantern configuration.
type Config struct {
	// HTTP surface
	Server ServerConfig `json:"server"`

	// Document store
	Database DatabaseConfig `json:"database"`

	// Read-path result cache
	Cache CacheConfig `json:"cache"`

	// Full-text search
	Search SearchConfig `json:"search"`

	// System logging
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	ListenAddr     string `json:"listen_addr"`
	MaxConnections int    `json:"max_connections"`
}

// DatabaseConfig selects and configures the store backend.
// Backend is "memory" or "postgres".
type DatabaseConfig struct {
	Backend        string `json:"backend"`
	DSN            string `json:"dsn,omitempty"`
	MaxConnections int32  `json:"max_connections,omitempty"`
	MigrationsPath string `json:"migrations_path,omitempty"`
}

// CacheConfig holds the read-path cache settings. The cache ships
// disabled; TTL is in seconds.
type CacheConfig struct {
	Enabled    bool `json:"enabled"`
	TTLSeconds int  `json:"ttl_seconds"`
}

// SearchConfig holds full-text index settings. An empty IndexPath keeps
// the index in memory.
type SearchConfig struct {
	IndexPath  string `json:"index_path,omitempty"`
	MaxResults int    `json:"max_results"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Output string `json:"output"` // console, file, both
	File   string `json:"file,omitempty"`
	Format string `json:"format"` // text, json
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     "127.0.0.1:8080",
			MaxConnections: 256,
		},
		Database: DatabaseConfig{
			Backend:        "memory",
			MaxConnections: 10,
			MigrationsPath: "file://migrations",
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 300,
		},
		Search: SearchConfig{
			IndexPath:  "",
			MaxResults: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "console",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a JSON file with environment
// variable overrides. A missing file leaves the defaults in place.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := config.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("LANTERN_LISTEN_ADDR"); val != "" {
		c.Server.ListenAddr = val
	}
	if val := os.Getenv("LANTERN_DB_BACKEND"); val != "" {
		c.Database.Backend = val
	}
	if val := os.Getenv("LANTERN_DB_DSN"); val != "" {
		c.Database.DSN = val
	}
	if val := os.Getenv("LANTERN_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	if val := os.Getenv("LANTERN_CACHE_TTL"); val != "" {
		if ttl, err := strconv.Atoi(val); err == nil {
			c.Cache.TTLSeconds = ttl
		}
	}
	if val := os.Getenv("LANTERN_INDEX_PATH"); val != "" {
		c.Search.IndexPath = val
	}
	if val := os.Getenv("LANTERN_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr cannot be empty")
	}
	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("server.max_connections must be positive")
	}

	switch c.Database.Backend {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown database backend: %s", c.Database.Backend)
	}

	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.File == "" {
		return fmt.Errorf("logging.file is required when output includes a file")
	}

	return nil
}

// SaveToFile writes the configuration as indented JSON.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
