// Package cli defines the command tree. Every command loads config, builds
// the logger, and opens storage on its own; nothing is ambient.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gr_scraper/internal/config"
	"gr_scraper/internal/logging"
	"gr_scraper/internal/storage"
)

var configPath string

// NewRootCmd assembles the gr_scraper command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gr_scraper",
		Short: "Discovers, classifies and stores government resolution PDFs",
		Long: "gr_scraper crawls the finance portal's document pages, extracts " +
			"PDF links, derives GR numbers, dates and subjects, classifies " +
			"each document by administrative branch, and persists the " +
			"deduplicated result.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(newScrapeCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newBranchesCmd())
	root.AddCommand(newScheduleCmd())
	return root
}

// setup loads config and builds the logger; shared preamble of every command.
func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

// openStore connects the configured backend, or an in-memory store for dry
// runs.
func openStore(cfg *config.Config, log *zap.SugaredLogger, dryRun bool) (storage.Store, error) {
	if dryRun {
		log.Infow("🧪 dry run: using in-memory storage")
		return storage.NewMemory(), nil
	}
	return storage.NewMongo(cfg.DB, log)
}
