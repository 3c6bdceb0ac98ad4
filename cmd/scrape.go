// Package cmd defines and implements the CLI commands for the
// tiktok-comments executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bitbash-dev/tiktok-comments/internal/config"
	"github.com/bitbash-dev/tiktok-comments/internal/export"
	"github.com/bitbash-dev/tiktok-comments/internal/logging"
	"github.com/bitbash-dev/tiktok-comments/internal/metrics"
	"github.com/bitbash-dev/tiktok-comments/internal/runner"
	"github.com/bitbash-dev/tiktok-comments/internal/server"
	"github.com/bitbash-dev/tiktok-comments/internal/store"
	memorystore "github.com/bitbash-dev/tiktok-comments/internal/store/memory"
	postgresstore "github.com/bitbash-dev/tiktok-comments/internal/store/postgres"
	"github.com/bitbash-dev/tiktok-comments/internal/transport"
	pkgconfig "github.com/bitbash-dev/tiktok-comments/pkg/config"
)

// newScrapeCmd creates and configures the 'scrape' subcommand, which
// runs every job from the input file sequentially.
func newScrapeCmd() *cobra.Command {
	var (
		inputPath    string
		outputDir    string
		exportFormat string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs the scrape jobs from the input file",
		Long: `Reads a JSON list of scrape jobs, fetches the comments for each video
sequentially, and writes the results to the output directory. Job
failures are logged and never abort sibling jobs; only a malformed
jobs file fails the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), inputPath, outputDir, exportFormat)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "data/inputs.json",
		"path to the JSON file with scrape jobs")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "data",
		"directory where results will be stored")
	cmd.Flags().StringVarP(&exportFormat, "export-format", "f", "",
		"override export format for all jobs (json, csv, both)")

	return cmd
}

func runScrape(ctx context.Context, inputPath, outputDir, exportFormat string) error {
	// A local .env is optional.
	_ = godotenv.Load()

	logger, err := logging.New(verbosity)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := pkgconfig.InitConfig(settingsPath); err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics.Init()

	jobs, err := runner.LoadJobs(inputPath)
	if err != nil {
		return err
	}

	client, err := transport.New(cfg.HTTP.Client, transport.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("init http client: %w", err)
	}

	var runs store.RunStore = memorystore.New()
	if cfg.DB.DSN != "" {
		pgStore, err := postgresstore.New(ctx, postgresstore.Config{
			DSN:   cfg.DB.DSN,
			Table: cfg.DB.Table,
		})
		if err != nil {
			return fmt.Errorf("init run store: %w", err)
		}
		runs = pgStore
	}
	defer runs.Close()

	var ops *http.Server
	if cfg.Server.MetricsAddr != "" {
		ops = server.New(cfg.Server.MetricsAddr, logger)
		go func() {
			logger.Info("metrics server started", zap.String("addr", cfg.Server.MetricsAddr))
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	sink := export.NewSink(logger)
	run := runner.New(cfg, client, sink, runs, logger)
	run.Run(ctx, jobs, runner.Options{
		OutputDir:    outputDir,
		ExportFormat: exportFormat,
	})

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown error", zap.Error(err))
		}
	}

	logger.Info("scrape command finished")
	return nil
}
