// Package config defines the types used to configure the practice timer.
// An example config file config.yaml is provided in the repository.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Logger  Logger  `yaml:"logger"`
	HTTP    HTTP    `yaml:"http"`
	Storage Storage `yaml:"storage"`
	Timer   Timer   `yaml:"timer"`
	Embed   Embed   `yaml:"embed"`
}

type Logger struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"`
}

type HTTP struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type Storage struct {
	// Backend is one of sqlite, postgres, valkey or memory.
	Backend  string   `yaml:"backend" default:"sqlite"`
	Prefix   string   `yaml:"prefix" default:"practice-session-timer-"`
	SQLite   SQLite   `yaml:"sqlite"`
	Postgres Postgres `yaml:"postgres"`
	Valkey   Valkey   `yaml:"valkey"`
}

type SQLite struct {
	Path string `yaml:"path" default:"practice-timer.db"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Valkey struct {
	Address  string `yaml:"address" default:"localhost:6379"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Timer struct {
	Interval time.Duration `yaml:"interval" default:"1s"`
	// RecordEmptySessions keeps a zero-length entry in the history when an idle timer is stopped.
	RecordEmptySessions bool `yaml:"recordEmptySessions" default:"true"`
}

type Embed struct {
	URL   string `yaml:"url" default:"https://www.google.com/search?igu=1&q=timer"`
	Title string `yaml:"title" default:"Timer"`
}

// Default returns a Config with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	return cfg, nil
}

// Load reads the YAML file at path on top of the defaults.
// A missing file is not an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML data into cfg, keeping values the document does not set.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks the values that cannot be caught by decoding.
func (c *Config) Validate() error {
	if c.Timer.Interval <= 0 {
		return fmt.Errorf("timer interval must be positive, got %s", c.Timer.Interval)
	}
	if c.Storage.Backend == "postgres" && c.Storage.Postgres.DSN == "" {
		return errors.New("storage.postgres.dsn is required for the postgres backend")
	}
	return nil
}
