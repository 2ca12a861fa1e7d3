package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"wealth-server/src/models"
)

// Message is a notification addressed to one user.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to users.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	log.Printf("INFO: Notification to %s: %s\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}

func userName(u models.User) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// BudgetAlert is sent when spending crosses the alert threshold of a budget.
func BudgetAlert(u models.User, budget, spent decimal.Decimal, percent decimal.Decimal) Message {
	return Message{
		To:      u.Email,
		Subject: "Budget Alert for Default Account",
		Body: fmt.Sprintf(
			"Hi %s,\nYou have used %s%% of your monthly budget.\nBudget: $%s\nSpent so far: $%s\nRemaining: $%s",
			userName(u), percent.StringFixed(1), budget.StringFixed(2), spent.StringFixed(2),
			budget.Sub(spent).StringFixed(2),
		),
	}
}

// MonthlyReport summarises a month and its insights.
func MonthlyReport(u models.User, in *models.FinancialInsight) Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\nHere is your financial report for %s %d.\n", userName(u), in.Month, in.Year)
	fmt.Fprintf(&sb, "Total income: $%s\n", in.TotalIncome.StringFixed(2))
	fmt.Fprintf(&sb, "Total expenses: $%s\n", in.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&sb, "Net income: $%s\n", in.NetIncome.StringFixed(2))
	if len(in.Insights) > 0 {
		sb.WriteString("\nInsights:\n")
		for _, insight := range in.Insights {
			fmt.Fprintf(&sb, "- %s\n", insight)
		}
	}
	return Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Your Monthly Financial Report - %s", in.Month),
		Body:    sb.String(),
	}
}
