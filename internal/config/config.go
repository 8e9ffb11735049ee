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
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quiz struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quiz"`
	LLM struct {
		Provider        string `yaml:"provider"`
		BaseURL         string `yaml:"base_url"`
		APIKey          string `yaml:"api_key"`
		Model           string `yaml:"model"`
		PromptVersion   string `yaml:"prompt_version"`
		MaxContentChars int    `yaml:"max_content_chars"`
		MaxAttempts     int    `yaml:"max_attempts"`
		BackoffBase     string `yaml:"backoff_base"`
		Timeout         string `yaml:"timeout"`
	} `yaml:"llm"`
	Upload struct {
		MaxSizeMB int    `yaml:"max_size_mb"`
		Dir       string `yaml:"dir"`
	} `yaml:"upload"`
}

// Load reads YAML config from path. Secrets may be supplied through the
// environment instead of the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOr returns v unless it is zero, in which case it returns the fallback.
func IntOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
