package cli

import (
	"github.com/spf13/cobra"

	"gr_scraper/internal/scraper"
	"gr_scraper/internal/storage"
)

func newVerifyCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-probe every stored PDF URL",
		Long: "Iterates all stored documents, checks whether each PDF is still " +
			"reachable, and writes a broken-link report. With --clean the " +
			"outcomes are also written back to storage.",
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

			pass := scraper.NewVerifyPass(cfg, store, log)
			report, err := pass.Run(ctx, clean)
			if err != nil {
				return err
			}

			if report.Broken > 0 {
				name, werr := storage.WriteReport(cfg.Backup.Dir, "broken_pdfs", report)
				if werr != nil {
					log.Warnw("⚠️ broken-link report not written", "error", werr)
				} else {
					log.Infow("📁 broken-link report saved", "file", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "write verification outcomes back to storage")
	return cmd
}
