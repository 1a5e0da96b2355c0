package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaultsAndBadges(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  path: test.db
storage:
  type: minio
levels:
  beginner:
    label: Beginner
    free: true
badges:
  completion:
    thresholds: [5, 10, 20]
    names: [Bronze, Silver, Gold]
    images: [b.png, s.png, g.png]
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Cache.StatsTTL() != 24*time.Hour {
		t.Fatalf("stats ttl: want=%v got=%v", 24*time.Hour, cfg.Cache.StatsTTL())
	}
	if cfg.Badges.MinQuizzesForSuccessRate != 20 {
		t.Fatalf("min quizzes: want=20 got=%d", cfg.Badges.MinQuizzesForSuccessRate)
	}
	if !cfg.Badges.Completion.Enabled || !cfg.Badges.SuccessRate.Enabled {
		t.Fatalf("badge families should be enabled by default: %+v", cfg.Badges)
	}
	if got := len(cfg.Badges.Completion.Thresholds); got != 3 {
		t.Fatalf("completion thresholds: want=3 got=%d", got)
	}
	if cfg.Badges.Completion.Names[1] != "Silver" {
		t.Fatalf("completion name[1]: want=Silver got=%s", cfg.Badges.Completion.Names[1])
	}
	lvl, ok := cfg.Levels["beginner"]
	if !ok || lvl.Label != "Beginner" || !lvl.Free {
		t.Fatalf("levels: unexpected %+v", cfg.Levels)
	}
	if cfg.Schedule.Weekly != "0 0 * * 1" || cfg.Schedule.Monthly != "0 0 1 * *" {
		t.Fatalf("schedule defaults: got %+v", cfg.Schedule)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Fatalf("jwt expire: want=%v got=%v", 24*time.Hour, cfg.JWT.ExpireTime)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: oracle
storage:
  type: minio
`)

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("LoadConfig: expected error for unsupported driver")
	}
}

func TestValidateReleaseSecret(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Mode: "release"},
		Database: DatabaseConfig{Driver: "mysql"},
		JWT:      JWTConfig{Secret: "short"},
		Cache:    CacheConfig{StatsTTLHours: 24},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate: expected error for short secret in release mode")
	}

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: unexpected error: %v", err)
	}
}
