package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: \"9090\"\n  requestTimeout: 3s\nquiz:\n  questionCount: 5\n  catalogTTL: nonsense\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.QuestionCount != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if d := TTLDuration(cfg.Server.RequestTimeout, time.Second); d != 3*time.Second {
		t.Fatalf("expected 3s, got %s", d)
	}
	if d := TTLDuration(cfg.Quiz.CatalogTTL, time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for bad duration, got %s", d)
	}
	if n := IntOr(cfg.Quiz.LeaderboardLimit, 10); n != 10 {
		t.Fatalf("expected default leaderboard limit, got %d", n)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
