package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Document source: DocsDir wins over blob storage when both are set.
	ConnectionString string `yaml:"connection_string"`
	Container        string `yaml:"container"`
	DocsDir          string `yaml:"docs_dir"`

	// Auth
	FunctionKey string `yaml:"function_key"`

	// Lookup
	MaxSectionChars  int   `yaml:"max_section_chars"`
	MaxDocumentBytes int64 `yaml:"max_document_bytes"`
	IgnoreFencedCode bool  `yaml:"ignore_fenced_code"`

	StoreTimeout     time.Duration `yaml:"store_timeout"`
	StoreMaxAttempts int           `yaml:"store_max_attempts"`
	MaxConnections   int           `yaml:"max_connections"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:             "8090",
		Container:        "reference-files",
		MaxSectionChars:  8000,
		MaxDocumentBytes: 10 << 20, // 10MB
		StoreTimeout:     30 * time.Second,
		StoreMaxAttempts: 1,
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	overlayEnv(&cfg)

	defaults := Defaults()
	if cfg.MaxSectionChars <= 0 {
		cfg.MaxSectionChars = defaults.MaxSectionChars
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = defaults.MaxDocumentBytes
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaults.StoreTimeout
	}
	if cfg.StoreMaxAttempts <= 0 {
		cfg.StoreMaxAttempts = defaults.StoreMaxAttempts
	}
	if cfg.MaxConnections < 0 {
		cfg.MaxConnections = 0
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.DocsDir == "" && c.ConnectionString == "" {
		return errors.New("AZURE_STORAGE_CONNECTION_STRING or DOCS_DIR is required")
	}
	if c.DocsDir == "" && c.Container == "" {
		return errors.New("STORAGE_CONTAINER must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// overlayEnv replaces fields whose environment variable is set and
// parses; unparsable values leave the field alone.
func overlayEnv(cfg *Config) {
	setFromEnv("PORT", &cfg.Port, asString)

	setFromEnv("AZURE_STORAGE_CONNECTION_STRING", &cfg.ConnectionString, asString)
	setFromEnv("STORAGE_CONTAINER", &cfg.Container, asString)
	setFromEnv("DOCS_DIR", &cfg.DocsDir, asString)

	setFromEnv("FUNCTION_KEY", &cfg.FunctionKey, asString)

	setFromEnv("MAX_SECTION_CHARS", &cfg.MaxSectionChars, strconv.Atoi)
	setFromEnv("MAX_DOCUMENT_BYTES", &cfg.MaxDocumentBytes, asInt64)
	setFromEnv("IGNORE_FENCED_CODE", &cfg.IgnoreFencedCode, strconv.ParseBool)

	setFromEnv("STORE_TIMEOUT", &cfg.StoreTimeout, time.ParseDuration)
	setFromEnv("STORE_MAX_ATTEMPTS", &cfg.StoreMaxAttempts, strconv.Atoi)
	setFromEnv("MAX_CONNECTIONS", &cfg.MaxConnections, strconv.Atoi)

	setFromEnv("LOG_LEVEL", &cfg.LogLevel, asString)
}

// Empty counts as unset.
func setFromEnv[T any](key string, dst *T, parse func(string) (T, error)) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if v, err := parse(raw); err == nil {
		*dst = v
	}
}

func asString(s string) (string, error) { return s, nil }

func asInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
