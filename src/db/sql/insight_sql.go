package db

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const insightColumns = `id, user_id, month, year, total_income, total_expenses, net_income, savings_rate,
	categories, insights, created_at, updated_at`

func scanInsight(row scanner) (*models.FinancialInsight, error) {
	var in models.FinancialInsight
	err := row.Scan(&in.ID, &in.UserID, &in.Month, &in.Year, &in.TotalIncome, &in.TotalExpenses, &in.NetIncome,
		&in.SavingsRate, &in.Categories, &in.Insights, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &in, nil
}

// UpsertInsight stores an insight keyed by (user, month, year).
func UpsertInsight(ctx context.Context, pool store.DBTX, in *models.FinancialInsight) (*models.FinancialInsight, error) {
	query := `
		INSERT INTO financial_insights (user_id, month, year, total_income, total_expenses, net_income,
			savings_rate, categories, insights)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, month, year) DO UPDATE SET
			total_income = EXCLUDED.total_income,
			total_expenses = EXCLUDED.total_expenses,
			net_income = EXCLUDED.net_income,
			savings_rate = EXCLUDED.savings_rate,
			categories = EXCLUDED.categories,
			insights = EXCLUDED.insights,
			updated_at = NOW()
		RETURNING ` + insightColumns
	return scanInsight(pool.QueryRow(ctx, query, in.UserID, in.Month, in.Year, in.TotalIncome, in.TotalExpenses,
		in.NetIncome, in.SavingsRate, in.Categories, in.Insights))
}

func GetInsight(ctx context.Context, pool store.DBTX, userID uuid.UUID, month string, year int) (*models.FinancialInsight, error) {
	query := `SELECT ` + insightColumns + ` FROM financial_insights WHERE user_id = $1 AND month = $2 AND year = $3`
	return scanInsight(pool.QueryRow(ctx, query, userID, month, year))
}

// GetAllInsights returns the user's insights, newest calendar month first.
func GetAllInsights(ctx context.Context, pool store.DBTX, userID uuid.UUID) ([]models.FinancialInsight, error) {
	rows, err := pool.Query(ctx, `SELECT `+insightColumns+` FROM financial_insights WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	insights := []models.FinancialInsight{}
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Year != insights[j].Year {
			return insights[i].Year > insights[j].Year
		}
		return monthIndex(insights[i].Month) > monthIndex(insights[j].Month)
	})
	return insights, nil
}

func DeleteInsightsUpdatedBefore(ctx context.Context, pool store.DBTX, before time.Time) (int64, error) {
	cmd, err := pool.Exec(ctx, `DELETE FROM financial_insights WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func monthIndex(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 0
}
