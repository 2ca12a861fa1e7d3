package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealth-server/src/ai"
	"wealth-server/src/models"
)

type stubModel struct {
	text string
	err  error
}

func (s stubModel) Generate(context.Context, string, ...ai.Image) (string, error) {
	return s.text, s.err
}

func TestMonthlyStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("GROUP BY type, category").
		WithArgs(userID, from, from.AddDate(0, 1, 0)).
		WillReturnRows(mock.NewRows([]string{"type", "category", "sum", "count"}).
			AddRow(models.TransactionTypeExpense, "groceries", dec("120.50"), 4).
			AddRow(models.TransactionTypeExpense, "housing", dec("900"), 1).
			AddRow(models.TransactionTypeIncome, "salary", dec("3000"), 1))

	stats, err := MonthlyStats(context.Background(), mock, userID, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "March", stats.Month)
	assert.Equal(t, 2024, stats.Year)
	assert.True(t, stats.TotalIncome.Equal(dec("3000")))
	assert.True(t, stats.TotalExpenses.Equal(dec("1020.50")))
	assert.Equal(t, 6, stats.TransactionCount)
	assert.Len(t, stats.Categories, 2)
	assert.NotContains(t, stats.Categories, "salary")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateInsightsFallsBackWithoutSaving(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stats := models.MonthlyStats{Month: "March", Year: 2024, TotalIncome: dec("100"), TotalExpenses: dec("150")}
	insight, persisted, err := GenerateInsights(context.Background(), mock, stubModel{err: errors.New("model unavailable")}, userID, stats)
	require.NoError(t, err)
	assert.False(t, persisted)
	require.Len(t, insight.Insights, 3)
	assert.Equal(t, "Your spending was $150.00 this month. Consider reviewing high-expense categories.", insight.Insights[0])
	assert.Equal(t, "Net income after expenses: $-50.00. Focus on maintaining positive cash flow.", insight.Insights[1])
	assert.True(t, insight.NetIncome.Equal(dec("-50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateInsightsSaves(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stats := models.MonthlyStats{
		Month: "March", Year: 2024, TotalIncome: dec("200"), TotalExpenses: dec("50"),
		Categories: map[string]decimal.Decimal{"food": dec("50")},
	}
	insights := []string{"a", "b", "c"}
	saved := models.FinancialInsight{
		ID: uuid.New(), UserID: userID, Month: "March", Year: 2024,
		TotalIncome: dec("200"), TotalExpenses: dec("50"), NetIncome: dec("150"), SavingsRate: dec("75"),
		Categories: stats.Categories, Insights: insights, CreatedAt: created, UpdatedAt: created,
	}

	mock.ExpectQuery("INSERT INTO financial_insights").
		WithArgs(userID, "March", 2024, decimalArg("200"), decimalArg("50"), decimalArg("150"), decimalArg("75"),
			stats.Categories, insights).
		WillReturnRows(mock.NewRows([]string{
			"id", "user_id", "month", "year", "total_income", "total_expenses", "net_income", "savings_rate",
			"categories", "insights", "created_at", "updated_at",
		}).AddRow(saved.ID, saved.UserID, saved.Month, saved.Year, saved.TotalIncome, saved.TotalExpenses,
			saved.NetIncome, saved.SavingsRate, saved.Categories, saved.Insights, saved.CreatedAt, saved.UpdatedAt))

	got, persisted, err := GenerateInsights(context.Background(), mock, stubModel{text: `["a","b","c"]`}, userID, stats)
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, insights, got.Insights)
	assert.NoError(t, mock.ExpectationsWereMet())
}
