// Package config loads the client settings from .env, an optional YAML
// file and LIBRARIAN_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every client setting.
type Config struct {
	// APIURL is the backend root, e.g. http://localhost:8080/api.
	APIURL string `yaml:"api_url"`

	// Timeout bounds every backend request. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is the book list page limit. Default: 200, Max: 1000
	PageSize int `yaml:"page_size"`

	// MaxPages stops a book listing that never returns a short page.
	// Default: 1000
	MaxPages int `yaml:"max_pages"`

	TokenFile   string `yaml:"token_file"`
	HistoryFile string `yaml:"history_file"`

	// HTTPAddr is where `librarian serve` listens. Default: 127.0.0.1:8090
	HTTPAddr string `yaml:"http_addr"`

	// LogLevel is one of debug, info, warn, error. Default: info
	LogLevel string `yaml:"log_level"`
}

const (
	defaultAPIURL   = "http://localhost:8080"
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 200
	maxPageSize     = 1000
	defaultMaxPages = 1000
	defaultHTTPAddr = "127.0.0.1:8090"
	defaultLogLevel = "info"
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	dir := stateDir()
	return Config{
		APIURL:      defaultAPIURL,
		Timeout:     defaultTimeout,
		PageSize:    defaultPageSize,
		MaxPages:    defaultMaxPages,
		TokenFile:   filepath.Join(dir, "token"),
		HistoryFile: filepath.Join(dir, "history"),
		HTTPAddr:    defaultHTTPAddr,
		LogLevel:    defaultLogLevel,
	}
}

// Load builds the configuration. A missing .env file is fine; a path that
// was given but cannot be read is not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.APIURL, "LIBRARIAN_API_URL")
	setString(&c.TokenFile, "LIBRARIAN_TOKEN_FILE")
	setString(&c.HistoryFile, "LIBRARIAN_HISTORY_FILE")
	setString(&c.HTTPAddr, "LIBRARIAN_HTTP_ADDR")
	setString(&c.LogLevel, "LIBRARIAN_LOG_LEVEL")

	if v := os.Getenv("LIBRARIAN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LIBRARIAN_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if err := setInt(&c.PageSize, "LIBRARIAN_PAGE_SIZE"); err != nil {
		return err
	}
	return setInt(&c.MaxPages, "LIBRARIAN_MAX_PAGES")
}

// validate clamps numeric settings into range and rejects values that
// cannot be repaired.
func (c *Config) validate() error {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.PageSize < 1 {
		c.PageSize = defaultPageSize
	}
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
	if c.MaxPages < 1 {
		c.MaxPages = defaultMaxPages
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute http(s) URL", c.APIURL)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", name, err)
	}
	return level, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func stateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".librarian"
	}
	return filepath.Join(dir, "librarian")
}
