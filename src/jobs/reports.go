package jobs

import (
	"context"
	"fmt"
	"log"

	"wealth-server/src/ai"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/models"
	"wealth-server/src/notify"
)

func monthlyReports(d Deps) Func {
	return func(ctx context.Context, _ Event) (any, error) {
		users, err := db.GetAllUsers(ctx, d.Pool)
		if err != nil {
			return nil, fmt.Errorf("loading users: %w", err)
		}

		from, _ := finance.PreviousMonth(d.now())
		sent := 0
		for _, u := range users {
			stats, err := finance.MonthlyStats(ctx, d.Pool, u.ID, from.Year(), from.Month())
			if err != nil {
				log.Printf("ERROR: Failed to compute monthly stats for user %s: %v", u.ID, err)
				continue
			}

			var insight *models.FinancialInsight
			if d.Model != nil {
				insight, _, err = finance.GenerateInsights(ctx, d.Pool, d.Model, u.ID, stats)
				if err != nil {
					log.Printf("ERROR: Failed to store insights for user %s: %v", u.ID, err)
					continue
				}
			} else {
				insight = &models.FinancialInsight{
					UserID:        u.ID,
					Month:         stats.Month,
					Year:          stats.Year,
					TotalIncome:   stats.TotalIncome,
					TotalExpenses: stats.TotalExpenses,
					NetIncome:     stats.NetIncome(),
					SavingsRate:   stats.SavingsRate(),
					Categories:    stats.Categories,
					Insights:      ai.FallbackInsights(stats),
				}
			}

			if err := d.Notifier.Notify(ctx, notify.MonthlyReport(u, insight)); err != nil {
				log.Printf("ERROR: Failed to send monthly report to user %s: %v", u.ID, err)
				continue
			}
			sent++
		}

		d.Cache.RevalidatePath(store.PathInsights)
		return map[string]any{"processed": len(users), "sent": sent}, nil
	}
}
