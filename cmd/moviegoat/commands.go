package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/MovieGoat/internal/config"
	"github.com/IshaanNene/MovieGoat/internal/storage"
	"github.com/IshaanNene/MovieGoat/internal/types"
)

// categoriesCmd creates the "categories" subcommand, which lists what a
// scrape would iterate over without fetching any listing page.
func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories found on the landing page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			cats, err := eng.DiscoverCategories(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range cats {
				fmt.Fprintf(out, "%2d. %s\n", i+1, c)
			}
			return nil
		},
	}
}

// previewCmd creates the "preview" subcommand for inspecting a written CSV.
func previewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview [file.csv]",
		Short: "Render a scraped CSV as a table",
		Long:  "Render a scraped CSV as a table. Without an argument the configured output file is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				path = filepath.Join(cfg.Storage.OutputPath, cfg.Storage.FileName+".csv")
			}

			rows, err := storage.ReadCSV(path)
			if err != nil {
				return err
			}

			total := len(rows)
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			cells := make([][]string, len(rows))
			for i, row := range rows {
				cells[i] = make([]string, len(types.Columns))
				for j, col := range types.Columns {
					cells[i][j] = row[col]
				}
			}

			out := cmd.OutOrStdout()
			storage.RenderTable(out, types.Columns, cells)
			fmt.Fprintf(out, "%d of %d rows from %s\n", len(rows), total, path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum rows to show (0 = all)")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "MovieGoat %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand, which prints the effective
// configuration as YAML.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
