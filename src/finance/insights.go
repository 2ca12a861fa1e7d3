package finance

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealth-server/src/ai"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/models"
)

// MonthlyStats aggregates a user's transactions for one calendar month. Categories holds
// expense totals only.
func MonthlyStats(ctx context.Context, pool store.DBTX, userID uuid.UUID, year int, month time.Month) (models.MonthlyStats, error) {
	from, to := MonthRange(year, month, time.UTC)
	totals, err := db.GetCategoryTotals(ctx, pool, userID, from, to)
	if err != nil {
		return models.MonthlyStats{}, fmt.Errorf("loading monthly totals: %w", err)
	}

	stats := models.MonthlyStats{
		Month:      month.String(),
		Year:       year,
		Categories: make(map[string]decimal.Decimal),
	}
	for _, ct := range totals {
		stats.TransactionCount += ct.Count
		switch ct.Type {
		case models.TransactionTypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(ct.Total)
		case models.TransactionTypeExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(ct.Total)
			stats.Categories[ct.Category] = stats.Categories[ct.Category].Add(ct.Total)
		}
	}
	return stats, nil
}

func insightFromStats(userID uuid.UUID, stats models.MonthlyStats, insights []string) *models.FinancialInsight {
	return &models.FinancialInsight{
		UserID:        userID,
		Month:         stats.Month,
		Year:          stats.Year,
		TotalIncome:   stats.TotalIncome,
		TotalExpenses: stats.TotalExpenses,
		NetIncome:     stats.NetIncome(),
		SavingsRate:   stats.SavingsRate().Round(2),
		Categories:    stats.Categories,
		Insights:      insights,
	}
}

// GenerateInsights asks the model about the month and stores the result by (user, month,
// year). When the model fails, templated insights are returned instead and nothing is
// stored; the second return value reports whether the insight was persisted.
func GenerateInsights(ctx context.Context, pool store.DBTX, m ai.Model, userID uuid.UUID, stats models.MonthlyStats) (*models.FinancialInsight, bool, error) {
	if stats.Categories == nil {
		stats.Categories = map[string]decimal.Decimal{}
	}

	insights, err := ai.GenerateInsights(ctx, m, stats)
	if err != nil {
		log.Printf("ERROR: Failed to generate insights for user %s (%s %d): %v", userID, stats.Month, stats.Year, err)
		return insightFromStats(userID, stats, ai.FallbackInsights(stats)), false, nil
	}

	saved, err := db.UpsertInsight(ctx, pool, insightFromStats(userID, stats, insights))
	if err != nil {
		return nil, false, fmt.Errorf("saving insights: %w", err)
	}
	return saved, true, nil
}
