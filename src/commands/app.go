package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"wealth-server/src/ai"
	"wealth-server/src/categories"
	"wealth-server/src/config"
	store "wealth-server/src/db"
	"wealth-server/src/jobs"
	"wealth-server/src/notify"
)

// app holds the long-lived services shared by the server and the job commands.
type app struct {
	cfg      config.Config
	pool     *pgxpool.Pool
	cache    *store.PathCache
	catalog  *categories.Catalog
	model    ai.Model
	notifier notify.Notifier
	jobs     *jobs.Registry
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	pool, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}

	cache, err := store.NewPathCache()
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &app{cfg: cfg, pool: pool, cache: cache, catalog: categories.Default()}

	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			a.close()
			return nil, err
		}
		a.model = gemini
	} else {
		log.Printf("WARN: GEMINI_API_KEY not set, receipt scanning and insights are disabled")
	}

	a.notifier, err = notify.New(cfg.DiscordBotToken, cfg.DiscordChannelID)
	if err != nil {
		a.close()
		return nil, err
	}

	a.jobs = jobs.NewRegistry()
	err = jobs.Register(a.jobs, jobs.Deps{
		Pool:            pool,
		Model:           a.model,
		Notifier:        a.notifier,
		Cache:           cache,
		AlertThreshold:  cfg.BudgetAlertThreshold,
		RetentionMonths: cfg.InsightRetentionMonths,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("registering jobs: %w", err)
	}

	return a, nil
}

func (a *app) close() {
	a.cache.Close()
	a.pool.Close()
}
