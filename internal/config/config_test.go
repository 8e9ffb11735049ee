package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0x3st/quizit/internal/config"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: "9090"
llm:
  model: gpt-4o-mini
  max_attempts: 5
upload:
  max_size_mb: 10
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LLM.MaxAttempts != 5 || cfg.Upload.MaxSizeMB != 10 {
		t.Fatalf("unexpected numeric fields: %+v", cfg)
	}
}

func TestDuration(t *testing.T) {
	if got := config.Duration("", time.Minute); got != time.Minute {
		t.Fatalf("empty must fall back, got %v", got)
	}
	if got := config.Duration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("invalid must fall back, got %v", got)
	}
	if got := config.Duration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("valid must parse, got %v", got)
	}
}

func TestIntOr(t *testing.T) {
	if got := config.IntOr(0, 25); got != 25 {
		t.Fatalf("zero must fall back, got %d", got)
	}
	if got := config.IntOr(7, 25); got != 7 {
		t.Fatalf("set value must win, got %d", got)
	}
}
