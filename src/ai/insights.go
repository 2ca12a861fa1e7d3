package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"wealth-server/src/models"
)

// InsightsPrompt renders the month's figures into the prompt asking for three insights.
func InsightsPrompt(stats models.MonthlyStats) string {
	savingsRate := "0"
	if stats.TotalIncome.IsPositive() {
		savingsRate = stats.SavingsRate().StringFixed(1)
	}

	names := make([]string, 0, len(stats.Categories))
	for name := range stats.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	cats := make([]string, 0, len(names))
	for _, name := range names {
		cats = append(cats, fmt.Sprintf("%s: $%s", name, stats.Categories[name].StringFixed(2)))
	}

	return fmt.Sprintf(`
Analyze this financial data and provide 3 concise, actionable insights.
Focus on spending patterns and practical advice.
Keep it friendly and conversational.

Financial Data for %s %d:
- Total Income: $%s
- Total Expenses: $%s
- Net Income: $%s
- Savings Rate: %s%%
- Expense Categories: %s

Format the response as a JSON array of strings, like this:
["insight 1", "insight 2", "insight 3"]
`,
		stats.Month, stats.Year,
		stats.TotalIncome.StringFixed(2),
		stats.TotalExpenses.StringFixed(2),
		stats.NetIncome().StringFixed(2),
		savingsRate,
		strings.Join(cats, ", "),
	)
}

// ParseInsights decodes the model's JSON array of insight strings.
func ParseInsights(text string) ([]string, error) {
	var insights []string
	if err := json.Unmarshal([]byte(stripFences(text)), &insights); err != nil {
		return nil, fmt.Errorf("decoding insights: %w", err)
	}
	if len(insights) == 0 {
		return nil, errors.New("model returned no insights")
	}
	return insights, nil
}

// GenerateInsights asks the model for insights on the month's figures.
func GenerateInsights(ctx context.Context, m Model, stats models.MonthlyStats) ([]string, error) {
	text, err := m.Generate(ctx, InsightsPrompt(stats))
	if err != nil {
		return nil, err
	}
	return ParseInsights(text)
}

// FallbackInsights are served when the model cannot produce insights.
func FallbackInsights(stats models.MonthlyStats) []string {
	return []string{
		fmt.Sprintf("Your spending was $%s this month. Consider reviewing high-expense categories.", stats.TotalExpenses.StringFixed(2)),
		fmt.Sprintf("Net income after expenses: $%s. Focus on maintaining positive cash flow.", stats.NetIncome().StringFixed(2)),
		"Track recurring expenses and identify opportunities to reduce spending in non-essential categories.",
	}
}
