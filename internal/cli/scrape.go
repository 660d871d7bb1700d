package cli

import (
	"github.com/spf13/cobra"

	"gr_scraper/internal/scraper"
)

func newScrapeCmd() *cobra.Command {
	var (
		perBranch int
		verify    bool
		routes    bool
		byBranch  bool
		discover  bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run the discovery pipeline once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if verify {
				cfg.Logic.VerifyPDFs = true
			}
			if routes {
				cfg.Logic.TrackRoutes = true
			}
			if discover {
				cfg.Logic.DiscoverPages = true
			}

			store, err := openStore(cfg, log, dryRun)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer store.Close(ctx) //nolint:errcheck

			opts := scraper.Options{
				Mode:            scraper.ModePages,
				TargetPerBranch: perBranch,
				Verify:          cfg.Logic.VerifyPDFs,
				TrackRoutes:     cfg.Logic.TrackRoutes,
				Discover:        cfg.Logic.DiscoverPages,
			}
			if byBranch {
				opts.Mode = scraper.ModeBranches
			}

			orch := scraper.New(cfg, store, log)
			_, err = orch.Run(ctx, opts)
			return err
		},
	}

	cmd.Flags().IntVar(&perBranch, "per-branch", 0, "max new documents per branch per run (0 = config default)")
	cmd.Flags().BoolVar(&verify, "verify", false, "probe every accepted PDF for reachability")
	cmd.Flags().BoolVar(&routes, "routes", false, "record navigation routes on accepted documents")
	cmd.Flags().BoolVar(&byBranch, "by-branch", false, "drive the GR page branch filter form instead of scanning pages")
	cmd.Flags().BoolVar(&discover, "discover", false, "also explore the home page for document sections")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scrape against in-memory storage, persist nothing")
	return cmd
}
