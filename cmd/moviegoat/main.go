package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/engine"
	"github.com/IshaanNene/MovieGoat/internal/fetcher"
	"github.com/IshaanNene/MovieGoat/internal/observability"
	"github.com/IshaanNene/MovieGoat/internal/parser"
	"github.com/IshaanNene/MovieGoat/internal/storage"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

var (
	cfgFile     string
	verbose     bool
	perCategory int
	delay       time.Duration
	outputPath  string
	outputType  string
	fileName    string
	categories  string
	parserType  string
	fetcherType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "moviegoat",
		Short: "MovieGoat: IMDb listing scraper",
		Long: `MovieGoat collects movie listings from IMDb category pages into a table.

It discovers the categories on the genre landing page, walks each category's
listing pages with a fixed delay between requests, and extracts title, year,
certificate, runtime, genres, rating, metascore, votes and US box office for
every entry. Results go to CSV, JSON, JSONL, SQLite, MongoDB or the terminal.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every category and write the table",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	cmd.Flags().IntVarP(&perCategory, "per-category", "n", 0, "number of titles to request per category")
	cmd.Flags().DurationVar(&delay, "delay", 0, "fixed delay between listing page requests")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output formats, comma separated: csv, json, jsonl, sqlite, mongodb, table")
	cmd.Flags().StringVar(&fileName, "name", "", "output file name without extension")
	cmd.Flags().StringVar(&categories, "categories", "", "comma-separated categories (skips discovery)")
	cmd.Flags().StringVar(&parserType, "parser", "", "parser type: css or xpath")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	metrics := observability.NewMetrics(logger)
	eng.SetMetrics(metrics)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metrics.Shutdown(shutdownCtx)
		}()
	}

	store, err := storage.New(cfg, eng.RunID(), logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	eng.SetStorage(store)

	logger.Info("starting scrape",
		"per_category", cfg.Scraper.PerCategory,
		"delay", cfg.Scraper.Delay,
		"storage", store.Name(),
		"output", cfg.Storage.OutputPath,
	)

	summary, err := eng.Run(ctx)
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary, cfg)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("scrape interrupted, partial results stored")
			return nil
		}
		return err
	}
	return nil
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	if verbose {
		cfg.Logging.Level = "debug"
	}

	flags := cmd.Flags()
	if flags.Changed("per-category") {
		cfg.Scraper.PerCategory = perCategory
	}
	if flags.Changed("delay") {
		cfg.Scraper.Delay = delay
	}
	if flags.Changed("output") {
		cfg.Storage.OutputPath = outputPath
	}
	if flags.Changed("format") {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if flags.Changed("name") {
		cfg.Storage.FileName = fileName
	}
	if flags.Changed("parser") {
		cfg.Parser.Type = strings.ToLower(parserType)
	}
	if flags.Changed("fetcher") {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if flags.Changed("categories") {
		var cats []string
		for _, c := range strings.Split(categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cats = append(cats, c)
			}
		}
		cfg.Scraper.Categories = cats
	}
}

// buildEngine wires the configured fetcher and parser into a new engine.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}

	p, err := parser.New(cfg.Parser.Type, logger)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create parser: %w", err)
	}

	eng := engine.New(cfg, logger)
	eng.SetFetcher(f)
	eng.SetParser(p)

	cleanup := func() {
		if err := f.Close(); err != nil {
			logger.Error("fetcher close error", "error", err)
		}
	}
	return eng, cleanup, nil
}

func printSummary(w io.Writer, s *engine.Summary, cfg *config.Config) {
	fmt.Fprintf(w, "\nScrape finished in %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "   Run:        %s\n", s.RunID)
	fmt.Fprintf(w, "   Categories: %d x %d pages\n", s.Categories, s.Offsets)
	fmt.Fprintf(w, "   Pages:      %d fetched, %d failed\n", s.PagesFetched, s.PagesFailed)
	fmt.Fprintf(w, "   Records:    %d\n", s.Records)
	if missing := formatMissing(s.FieldsMissing); missing != "" {
		fmt.Fprintf(w, "   Missing:    %s\n", missing)
	}
	fmt.Fprintf(w, "   Output:     %s (%s)\n", cfg.Storage.OutputPath, cfg.Storage.Type)
}

// formatMissing lists columns with missing values in table order.
func formatMissing(missing map[string]int) string {
	var parts []string
	for _, col := range types.Columns {
		if n := missing[col]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", col, n))
		}
	}
	return strings.Join(parts, ", ")
}

// setupLogger creates a structured logger from the logging config. The
// returned func closes the log file, if any.
func setupLogger(lc config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}

	out := io.Writer(os.Stderr)
	closer := func() {}
	switch lc.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(lc.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}
