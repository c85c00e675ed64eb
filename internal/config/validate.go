package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Listing URL placeholders.
const (
	PlaceholderCategory = "{category}"
	PlaceholderStart    = "{start}"
)

// MaxPageSize is the largest number of titles a listing page can hold.
const MaxPageSize = 250

var validStorageTypes = map[string]bool{
	"csv": true, "json": true, "jsonl": true, "sqlite": true, "mongodb": true, "table": true,
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Scraper.LandingURL); err != nil && len(cfg.Scraper.Categories) == 0 {
		return fmt.Errorf("scraper.landing_url: %w", err)
	}
	if !strings.Contains(cfg.Scraper.ListingURL, PlaceholderCategory) ||
		!strings.Contains(cfg.Scraper.ListingURL, PlaceholderStart) {
		return fmt.Errorf("scraper.listing_url must contain %s and %s", PlaceholderCategory, PlaceholderStart)
	}
	probe := strings.NewReplacer(PlaceholderCategory, "Action", PlaceholderStart, "1").Replace(cfg.Scraper.ListingURL)
	if err := ValidateURL(probe); err != nil {
		return fmt.Errorf("scraper.listing_url: %w", err)
	}
	if cfg.Scraper.PerCategory < 1 {
		return fmt.Errorf("scraper.per_category must be >= 1, got %d", cfg.Scraper.PerCategory)
	}
	if cfg.Scraper.PageSize < 1 || cfg.Scraper.PageSize > MaxPageSize {
		return fmt.Errorf("scraper.page_size must be 1-%d, got %d", MaxPageSize, cfg.Scraper.PageSize)
	}
	if cfg.Scraper.Delay < 0 {
		return fmt.Errorf("scraper.delay must be >= 0")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.ProxyURL != "" {
		if _, err := url.Parse(cfg.Fetcher.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", cfg.Fetcher.ProxyURL, err)
		}
	}

	if cfg.Parser.Type != "css" && cfg.Parser.Type != "xpath" {
		return fmt.Errorf("parser.type must be 'css' or 'xpath', got %q", cfg.Parser.Type)
	}

	types := StorageTypes(cfg.Storage.Type)
	if len(types) == 0 {
		return fmt.Errorf("storage.type must not be empty")
	}
	for _, t := range types {
		if !validStorageTypes[t] {
			return fmt.Errorf("storage.type %q is not supported (valid: csv, json, jsonl, sqlite, mongodb, table)", t)
		}
	}
	if strings.TrimSpace(cfg.Storage.FileName) == "" {
		return fmt.Errorf("storage.file_name must not be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// StorageTypes splits a comma-separated storage.type value.
func StorageTypes(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ValidateURL checks if a URL string is valid for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
