package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DatabaseEnv overrides database.dsn when set.
const DatabaseEnv = "WORLDQUIZ_DB"

type Config struct {
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Dataset struct {
		Path string `yaml:"path"`
	} `yaml:"dataset"`
	Quiz struct {
		Questions int    `yaml:"questions"`
		Label     string `yaml:"label"`
	} `yaml:"quiz"`
	History struct {
		TTL string `yaml:"ttl"`
	} `yaml:"history"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "worldquiz.db"
	cfg.Quiz.Questions = 6
	cfg.Quiz.Label = "Quiz"
	cfg.History.TTL = "5m"
	cfg.Redis.TTL = "24h"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
	default:
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	if dsn := os.Getenv(DatabaseEnv); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
