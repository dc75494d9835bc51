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
	Catalog struct {
		// Path to a songs.json document, used when postgres is not configured.
		Path string `yaml:"path"`
		TTL  string `yaml:"ttl"`
	} `yaml:"catalog"`
	Challenge struct {
		QuestionCount int    `yaml:"question_count"`
		ResultTTL     string `yaml:"result_ttl"`
	} `yaml:"challenge"`
	Scoring struct {
		RankStrategy string `yaml:"rank_strategy"`
		MaxScore     int    `yaml:"max_score"`
	} `yaml:"scoring"`
	Ranking struct {
		Engine     string `yaml:"engine"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"ranking"`
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
