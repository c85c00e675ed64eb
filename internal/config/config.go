package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for MovieGoat.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Parser  ParserConfig  `mapstructure:"parser"  yaml:"parser"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ScraperConfig controls what is scraped and how fast.
type ScraperConfig struct {
	LandingURL  string         `mapstructure:"landing_url"  yaml:"landing_url"`
	ListingURL  string         `mapstructure:"listing_url"  yaml:"listing_url"`
	PerCategory int            `mapstructure:"per_category" yaml:"per_category"`
	PageSize    int            `mapstructure:"page_size"    yaml:"page_size"`
	Delay       time.Duration  `mapstructure:"delay"        yaml:"delay"`
	Categories  []string       `mapstructure:"categories"   yaml:"categories"`
	Identity    IdentityConfig `mapstructure:"identity"     yaml:"identity"`
}

// IdentityConfig is the identification header pair sent with every page fetch.
type IdentityConfig struct {
	Name  string `mapstructure:"name"  yaml:"name"`
	Value string `mapstructure:"value" yaml:"value"`
}

// Headers returns the identity as a header map.
func (c IdentityConfig) Headers() map[string]string {
	if c.Name == "" {
		return nil
	}
	return map[string]string{c.Name: c.Value}
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	ProxyURL        string        `mapstructure:"proxy_url"         yaml:"proxy_url"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
}

// ParserConfig selects the document parser.
type ParserConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // css, xpath
}

// StorageConfig controls output.
type StorageConfig struct {
	// Type is a backend name or a comma-separated list of them.
	Type       string      `mapstructure:"type"        yaml:"type"`
	OutputPath string      `mapstructure:"output_path" yaml:"output_path"`
	FileName   string      `mapstructure:"file_name"   yaml:"file_name"`
	Mongo      MongoConfig `mapstructure:"mongo"       yaml:"mongo"`
}

// MongoConfig controls the MongoDB backend.
type MongoConfig struct {
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with the defaults used against IMDb.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			LandingURL:  "https://www.imdb.com/feature/genre/?ref_=nv_ch_gr",
			ListingURL:  "https://www.imdb.com/search/title/?genres={category}&sort=boxoffice_gross_us,desc&start={start}&explore=title_type,genres&ref_=adv_nxt",
			PerCategory: 1,
			PageSize:    50,
			Delay:       2 * time.Second,
			Identity: IdentityConfig{
				Name:  "Turing-College-capstone-project-work",
				Value: "Mozilla/5.0",
			},
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       "MovieGoat/" + Version,
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
		},
		Parser: ParserConfig{
			Type: "css",
		},
		Storage: StorageConfig{
			Type:       "csv",
			OutputPath: ".",
			FileName:   "scraped_imdb_file",
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "moviegoat",
				Collection: "movies",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
