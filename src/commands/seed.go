package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wealth-server/src/categories"
	"wealth-server/src/config"
	store "wealth-server/src/db"
	"wealth-server/src/seed"
)

func newSeedCommand() *cobra.Command {
	var user string
	var days int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo transactions for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			pool, err := store.Connect(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("DB connection failed: %w", err)
			}
			defer pool.Close()

			n, err := seed.Seed(cmd.Context(), pool, categories.Default(), user, days, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d transactions\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "external user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().IntVar(&days, "days", 90, "days of history to generate")

	return cmd
}
