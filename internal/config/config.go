package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string `yaml:"port"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionCount    int    `yaml:"questionCount"`
		LeaderboardLimit int    `yaml:"leaderboardLimit"`
		CatalogTTL       string `yaml:"catalogTTL"`
	} `yaml:"quiz"`
	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		Endpoint    string  `yaml:"endpoint"`
		Insecure    bool    `yaml:"insecure"`
		SampleRatio float64 `yaml:"sampleRatio"`
	} `yaml:"tracing"`
	OpenTDB struct {
		BaseURL string `yaml:"baseURL"`
		Amount  int    `yaml:"amount"`
		Timeout string `yaml:"timeout"`
	} `yaml:"opentdb"`
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

// IntOr returns v when positive, otherwise the fallback.
func IntOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
