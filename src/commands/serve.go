package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"wealth-server/src/api"
	bank "wealth-server/src/plaid"
	"wealth-server/src/util"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	deps := api.Deps{
		Pool:          a.pool,
		Cache:         a.cache,
		Catalog:       a.catalog,
		Model:         a.model,
		Jobs:          a.jobs,
		JWTSecret:     a.cfg.JWTSecret,
		JobSigningKey: []byte(a.cfg.JobSigningKey),
		CORSOrigins:   a.cfg.CORSOrigins,
		DemoMode:      a.cfg.DemoMode,
	}

	if a.cfg.PlaidEnabled() {
		plaidClient, err := bank.NewPlaidClient(a.cfg.PlaidClientID, a.cfg.PlaidSecret, a.cfg.PlaidEnv)
		if err != nil {
			return err
		}
		deps.Plaid = plaidClient
		deps.PlaidVerifier = util.NewPlaidVerifier(plaidClient.API())
	} else {
		log.Printf("WARN: Plaid credentials not set, bank linking is disabled")
	}

	if a.cfg.LocalCron {
		c := cron.New()
		if err := a.jobs.Schedule(ctx, c); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		log.Printf("INFO: Local cron scheduler started")
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("API server running on port", a.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("INFO: Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
