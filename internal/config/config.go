package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Oracle struct {
		BaseURL string `yaml:"base_url"`
		// APIKeyEnv names the environment variable holding the key, so the
		// key itself never lives in the config file.
		APIKeyEnv string `yaml:"api_key_env"`
		Model     string `yaml:"model"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"oracle"`
	Interview struct {
		Questions int    `yaml:"questions"`
		ReportTTL string `yaml:"report_ttl"`
	} `yaml:"interview"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SessionLength returns the configured questions-per-interview, defaulting
// to five.
func (c Config) SessionLength() int {
	if c.Interview.Questions > 0 {
		return c.Interview.Questions
	}
	return 5
}

// Duration parses a duration string or returns the fallback if empty or
// invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
