package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"gr_scraper/internal/scraper"
)

func newScheduleCmd() *cobra.Command {
	var (
		spec     string
		byBranch bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the discovery pipeline on a cron schedule",
		Long: "Keeps the process alive and runs a scrape on the given cron " +
			"expression. Dedup state is rebuilt from storage on every run, so " +
			"repeated runs only pick up documents the portal has added since.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			store, err := openStore(cfg, log, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer store.Close(ctx) //nolint:errcheck

			opts := scraper.Options{
				Mode:        scraper.ModePages,
				Verify:      cfg.Logic.VerifyPDFs,
				TrackRoutes: cfg.Logic.TrackRoutes,
				Discover:    cfg.Logic.DiscoverPages,
			}
			if byBranch {
				opts.Mode = scraper.ModeBranches
			}

			orch := scraper.New(cfg, store, log)
			c := cron.New()
			if _, err := c.AddFunc(spec, func() {
				if _, rerr := orch.Run(ctx, opts); rerr != nil {
					log.Errorw("❌ scheduled run failed", "error", rerr)
				}
			}); err != nil {
				return err
			}

			c.Start()
			log.Infow("⏰ scheduler started", "cron", spec)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigChan:
			case <-ctx.Done():
			}

			log.Infow("⚠️ shutting down scheduler")
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "0 6 * * *", "cron expression for scrape runs")
	cmd.Flags().BoolVar(&byBranch, "by-branch", false, "use the branch filter form on scheduled runs")
	return cmd
}
