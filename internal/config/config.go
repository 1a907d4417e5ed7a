package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".animeshelf"
	fileName = "config.yaml"

	defaultAPIURL = "http://localhost:8000"
)

// Config holds user preferences
type Config struct {
	APIURL         string        `yaml:"api_url" env:"ANIMESHELF_API_URL"`                 // Catalog API base URL
	RequestTimeout time.Duration `yaml:"request_timeout" env:"ANIMESHELF_REQUEST_TIMEOUT"` // Per-request HTTP timeout
	DBPath         string        `yaml:"db_path" env:"ANIMESHELF_DB_PATH"`                 // Local state database

	// Logging configuration
	LogLevel   string `yaml:"log_level" env:"ANIMESHELF_LOG_LEVEL"`     // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" env:"ANIMESHELF_LOG_FILE"`       // Path to log file
	LogConsole bool   `yaml:"log_console" env:"ANIMESHELF_LOG_CONSOLE"` // Enable console logging

	// Tracing configuration
	Trace     bool   `yaml:"trace" env:"ANIMESHELF_TRACE"`           // Export spans for API calls
	TraceFile string `yaml:"trace_file" env:"ANIMESHELF_TRACE_FILE"` // Where spans are written
}

// Dir returns ~/.animeshelf
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// DefaultPath returns ~/.animeshelf/config.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()

	cfg := &Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "INFO",
	}
	if dir != "" {
		cfg.DBPath = filepath.Join(dir, "state.db")
		cfg.LogFile = filepath.Join(dir, "logs", "animeshelf.log")
		cfg.TraceFile = filepath.Join(dir, "logs", "traces.jsonl")
	}
	return cfg
}

// Load reads config from path (or the default path when empty). A missing
// file yields defaults. ANIMESHELF_* environment variables override both.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read config env: %w", err)
		}
		return cfg.normalize(), nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg.normalize(), nil
}

func (c *Config) normalize() *Config {
	def := DefaultConfig()

	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = def.DBPath
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

// Save writes config to path (or the default path when empty)
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
