package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefaultIdentity(t *testing.T) {
	h := DefaultConfig().Scraper.Identity.Headers()
	if h["Turing-College-capstone-project-work"] != "Mozilla/5.0" {
		t.Errorf("unexpected identity headers: %v", h)
	}
	if (IdentityConfig{}).Headers() != nil {
		t.Error("empty identity should yield no headers")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero per category", func(c *Config) { c.Scraper.PerCategory = 0 }},
		{"zero page size", func(c *Config) { c.Scraper.PageSize = 0 }},
		{"huge page size", func(c *Config) { c.Scraper.PageSize = 1 << 40 }},
		{"negative delay", func(c *Config) { c.Scraper.Delay = -time.Second }},
		{"listing without start", func(c *Config) { c.Scraper.ListingURL = "https://example.com/?genres={category}" }},
		{"listing without scheme", func(c *Config) { c.Scraper.ListingURL = "example.com/?g={category}&s={start}" }},
		{"bad landing", func(c *Config) { c.Scraper.LandingURL = "ftp://example.com" }},
		{"bad fetcher", func(c *Config) { c.Fetcher.Type = "curl" }},
		{"bad parser", func(c *Config) { c.Parser.Type = "regex" }},
		{"bad storage", func(c *Config) { c.Storage.Type = "csv,xlsx" }},
		{"empty storage", func(c *Config) { c.Storage.Type = " , " }},
		{"empty file name", func(c *Config) { c.Storage.FileName = " " }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLandingNotNeededWithFixedCategories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scraper.LandingURL = ""
	cfg.Scraper.Categories = []string{"Action"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestStorageTypes(t *testing.T) {
	got := StorageTypes(" CSV, table ,,sqlite")
	want := []string{"csv", "table", "sqlite"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moviegoat.yaml")
	data := []byte(`scraper:
  per_category: 120
  delay: 500ms
  categories: [Action, Comedy]
storage:
  type: csv,table
  file_name: run1
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Scraper.PerCategory != 120 {
		t.Errorf("expected per_category 120, got %d", cfg.Scraper.PerCategory)
	}
	if cfg.Scraper.Delay != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %s", cfg.Scraper.Delay)
	}
	if len(cfg.Scraper.Categories) != 2 || cfg.Scraper.Categories[1] != "Comedy" {
		t.Errorf("unexpected categories %v", cfg.Scraper.Categories)
	}
	if cfg.Storage.FileName != "run1" {
		t.Errorf("expected file name run1, got %q", cfg.Storage.FileName)
	}
	// untouched keys keep their defaults
	if cfg.Scraper.PageSize != 50 {
		t.Errorf("expected default page size 50, got %d", cfg.Scraper.PageSize)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
