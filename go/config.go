package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen string `yaml:"listen"`
	// Rules is a directory of *.json rule tables.
	Rules string `yaml:"rules"`
	// Store, if set, is a chunk database neighbor lookups read from.
	Store string `yaml:"store"`
	// StorePlatform is the platform every chunk in Store was written by.
	StorePlatform string `yaml:"store_platform"`
	// VersionTable is a YAML chunk version table replacing the built-in
	// leveldb one.
	VersionTable string `yaml:"version_table"`
	Workers      int    `yaml:"workers"`
	LogLevel     string `yaml:"log_level"`
}

// ListenAddr returns the listen address: config, then WORLDSHIFT_LISTEN,
// then the default.
func (c *Config) ListenAddr() string {
	if c.Listen != "" {
		return c.Listen
	}
	if addr := os.Getenv("WORLDSHIFT_LISTEN"); addr != "" {
		return addr
	}
	return "127.0.0.1:9999"
}

func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// loadConfig reads a YAML config file. An empty path falls back to
// WORLDSHIFT_CONFIG, and to defaults if that is unset too.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLDSHIFT_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &cfg, nil
}
