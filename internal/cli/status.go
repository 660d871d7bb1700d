package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gr_scraper/internal/models"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage counts per branch",
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

			total, err := store.Count(ctx)
			if err != nil {
				return err
			}
			branches, err := store.Branches(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("📊 Total documents: %d\n", total)
			fmt.Printf("🌳 Branches: %d\n", len(branches))
			for _, b := range branches {
				docs, berr := store.ByBranch(ctx, models.BranchCode(b))
				if berr != nil {
					return berr
				}
				fmt.Printf("  • %s: %d docs\n", b, len(docs))
			}
			return nil
		},
	}
}

func newBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List distinct branch values present in storage",
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

			branches, err := store.Branches(ctx)
			if err != nil {
				return err
			}
			for _, b := range branches {
				fmt.Println(b)
			}
			return nil
		},
	}
}
