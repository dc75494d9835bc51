package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: "9090"
redis:
  addr: localhost:6379
catalog:
  path: data/songs.json
  ttl: 2m
challenge:
  question_count: 5
  result_ttl: 5m
scoring:
  rank_strategy: percentage
  max_score: 20000
ranking:
  engine: sqlite
  sqlite_path: data/rankings.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected server/redis config %+v", cfg)
	}
	if cfg.Catalog.Path != "data/songs.json" || cfg.Challenge.QuestionCount != 5 {
		t.Fatalf("unexpected catalog/challenge config %+v", cfg)
	}
	if TTLDuration(cfg.Catalog.TTL, 0) != 2*time.Minute || TTLDuration(cfg.Challenge.ResultTTL, 0) != 5*time.Minute {
		t.Fatalf("unexpected ttls catalog=%q result=%q", cfg.Catalog.TTL, cfg.Challenge.ResultTTL)
	}
	if cfg.Scoring.RankStrategy != "percentage" || cfg.Scoring.MaxScore != 20000 {
		t.Fatalf("unexpected scoring config %+v", cfg.Scoring)
	}
	if cfg.Ranking.Engine != "sqlite" || cfg.Ranking.SQLitePath != "data/rankings.db" {
		t.Fatalf("unexpected ranking config %+v", cfg.Ranking)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"5m", 5 * time.Minute},
		{"soon", time.Minute},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
